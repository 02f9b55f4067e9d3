package tui

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/surface"
)

// RadioPlaceholder is the first entry of a radio prompt and clears the group.
const RadioPlaceholder = "(none)"

// Fill walks the rendered layout of mem in order and prompts for every
// control, writing the answers back onto the surface. Current values are
// offered as defaults so a second pass edits rather than restarts.
func Fill(ctx context.Context, driver PromptDriver, mem *surface.Memory) error {
	for _, entry := range mem.Layout() {
		var err error
		switch {
		case entry.Control != nil:
			err = fillControl(ctx, driver, mem, *entry.Control)
		case entry.Group != nil:
			err = fillGroup(ctx, driver, mem, *entry.Group, entry.Peers)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func fillControl(ctx context.Context, driver PromptDriver, mem *surface.Memory, ctrl surface.Control) error {
	current, _ := mem.ReadControl(ctrl.ID)

	switch ctrl.Kind {
	case surface.KindInput:
		answer, err := driver.Input(ctx, InputConfig{
			Message: ctrl.Label,
			Default: current.Text,
			Help:    helpText(ctrl.Placeholder, ctrl.Hint),
		})
		if err != nil {
			return err
		}
		return mem.SetText(ctrl.ID, answer)

	case surface.KindTextArea:
		answer, err := driver.TextArea(ctx, TextAreaConfig{
			Message: ctrl.Label,
			Default: current.Text,
			Help:    helpText(ctrl.Placeholder, ctrl.Hint),
		})
		if err != nil {
			return err
		}
		return mem.SetText(ctrl.ID, answer)

	case surface.KindCheckbox:
		answer, err := driver.Confirm(ctx, ConfirmConfig{
			Message: ctrl.Label,
			Default: current.Checked,
			Help:    ctrl.Hint,
		})
		if err != nil {
			return err
		}
		return mem.SetChecked(ctrl.ID, answer)

	case surface.KindSelect:
		// Index 0 is the placeholder entry and maps to "no choice".
		options := append([]string{ctrl.PlaceholderOption}, ctrl.Options...)
		defaultIdx := 0
		if idx := indexOf(ctrl.Options, current.Text); idx >= 0 {
			defaultIdx = idx + 1
		}
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      ctrl.Label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         ctrl.Hint,
		})
		if err != nil {
			return err
		}
		if idx <= 0 || idx >= len(options) {
			return mem.SelectOption(ctrl.ID, "")
		}
		return mem.SelectOption(ctrl.ID, options[idx])

	default:
		return fmt.Errorf("tui: unsupported control kind %s for %q", ctrl.Kind, ctrl.ID)
	}
}

func fillGroup(ctx context.Context, driver PromptDriver, mem *surface.Memory, group surface.Group, peers []surface.Control) error {
	if len(peers) == 0 {
		return nil
	}
	// Index 0 leaves the group unchosen, like the select placeholder.
	labels := make([]string, 0, len(peers)+1)
	values := make([]string, 0, len(peers))
	labels = append(labels, RadioPlaceholder)
	for _, peer := range peers {
		labels = append(labels, peer.Label)
		values = append(values, peer.Value)
	}

	current, _ := mem.ReadGroup(group.Name)
	defaultIdx := 0
	if idx := indexOf(values, current); idx >= 0 && current != "" {
		defaultIdx = idx + 1
	}
	idx, err := driver.Select(ctx, SelectConfig{
		Message:      group.Label,
		Options:      labels,
		DefaultIndex: defaultIdx,
		Help:         group.Hint,
	})
	if err != nil {
		return err
	}
	if idx <= 0 || idx > len(values) {
		return mem.ClearGroup(group.Name)
	}
	return mem.Choose(group.Name, values[idx-1])
}

func helpText(placeholder, hint string) string {
	switch {
	case placeholder != "" && hint != "":
		return placeholder + " | " + hint
	case placeholder != "":
		return placeholder
	default:
		return hint
	}
}

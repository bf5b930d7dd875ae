package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

const KeyTheme = "theme"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeBlue   Theme = "blue"
	ThemePurple Theme = "purple"
)

var Themes = []Theme{ThemeLight, ThemeDark, ThemeBlue, ThemePurple}

var ErrInvalidTheme = errors.New("invalid theme")

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Service struct {
	kv KV
}

func NewService(kv KV) *Service {
	return &Service{kv: kv}
}

// Theme returns the saved theme; a missing or unknown value reads as light.
func (s *Service) Theme(ctx context.Context) (Theme, error) {
	raw, ok, err := s.kv.Get(ctx, KeyTheme)
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	if !ok || !Valid(Theme(raw)) {
		return ThemeLight, nil
	}
	return Theme(raw), nil
}

func (s *Service) SetTheme(ctx context.Context, t Theme) error {
	if !Valid(t) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
	}
	if err := s.kv.Set(ctx, KeyTheme, string(t)); err != nil {
		return fmt.Errorf("write theme: %w", err)
	}
	return nil
}

func Valid(t Theme) bool {
	return slices.Contains(Themes, t)
}

package tracker

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Categories is the in-memory category store for the current day.
type Categories struct {
	items map[string]CategoryData
}

// NewCategories builds a store from a persisted day. The day is copied.
func NewCategories(day DayData) *Categories {
	c := &Categories{items: make(map[string]CategoryData, len(day.Categories))}
	for name, data := range day.Categories {
		if data.Time < 0 {
			data.Time = 0
		}
		c.items[name] = data
	}
	return c
}

// Add inserts a new category with zero time.
func (c *Categories) Add(name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if _, exists := c.items[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	color, err := c.resolveColor(color)
	if err != nil {
		return err
	}
	c.items[name] = CategoryData{Time: 0, Color: color}
	return nil
}

// Rename moves oldName to newName, keeping its accumulated time and
// replacing its color.
func (c *Categories) Rename(oldName, newName, color string) error {
	data, exists := c.items[oldName]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	if newName != oldName {
		if _, taken := c.items[newName]; taken {
			return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
		}
	}
	if strings.TrimSpace(color) != "" {
		normalized, err := normalizeColor(color)
		if err != nil {
			return err
		}
		data.Color = normalized
	}
	delete(c.items, oldName)
	c.items[newName] = data
	return nil
}

// Remove deletes a category.
func (c *Categories) Remove(name string) error {
	if _, exists := c.items[name]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(c.items, name)
	return nil
}

// Tick credits delta seconds to name. It reports false, and drops the
// delta, when the category no longer exists.
func (c *Categories) Tick(name string, delta int64) bool {
	data, exists := c.items[name]
	if !exists {
		return false
	}
	if delta > 0 {
		data.Time += delta
		c.items[name] = data
	}
	return true
}

// Has reports whether name exists.
func (c *Categories) Has(name string) bool {
	_, exists := c.items[name]
	return exists
}

// Get returns a copy of the named category.
func (c *Categories) Get(name string) (CategoryData, bool) {
	data, exists := c.items[name]
	return data, exists
}

// Len returns the number of categories.
func (c *Categories) Len() int {
	return len(c.items)
}

// Reset zeroes every category's time.
func (c *Categories) Reset() {
	for name, data := range c.items {
		data.Time = 0
		c.items[name] = data
	}
}

// Snapshot copies the store into a DayData for date.
func (c *Categories) Snapshot(date string) DayData {
	day := NewDay(date)
	for name, data := range c.items {
		day.Categories[name] = data
	}
	return day
}

func (c *Categories) resolveColor(color string) (string, error) {
	if strings.TrimSpace(color) == "" {
		return PaletteColor(len(c.items)), nil
	}
	return normalizeColor(color)
}

// normalizeColor validates a #rgb or #rrggbb code and returns it trimmed.
func normalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if len(color) != 4 && len(color) != 7 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	if _, err := colorful.Hex(color); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	return color, nil
}

// PaletteColor returns the n-th default category color. Hues are spread by
// a golden-angle step so neighbouring categories stay distinguishable.
func PaletteColor(n int) string {
	hue := float64((n*137)%360) + 0.5
	return colorful.Hcl(hue, 0.55, 0.65).Clamped().Hex()
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ItemID identifies an item. Sources may send it as a number or a string;
// numbers are kept in their shortest decimal form.
type ItemID string

// String returns the identifier text.
func (id ItemID) String() string { return string(id) }

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("item id must be a number or a string: %w", err)
	}
	*id = ItemID(FormatNumber(n))
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (id *ItemID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("item id must be a scalar, got yaml kind %d", value.Kind)
	}
	if tag := value.ShortTag(); tag == "!!int" || tag == "!!float" {
		n, err := strconv.ParseFloat(value.Value, 64)
		if err == nil {
			*id = ItemID(FormatNumber(n))
			return nil
		}
	}
	*id = ItemID(value.Value)
	return nil
}

// Item is a single reportable entry. IDs need not be unique; stored rows
// are keyed by RowID.
type Item struct {
	RowID    uint    `json:"-" yaml:"-" gorm:"primaryKey;autoIncrement"`
	ID       ItemID  `json:"id" yaml:"id" gorm:"size:255;index"`
	Name     string  `json:"name" yaml:"name" gorm:"size:255;not null"`
	Value    float64 `json:"value" yaml:"value" gorm:"not null"`
	Position int     `json:"-" yaml:"-" gorm:"index"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "items"
}

// FormatNumber renders n the way reports print values and totals: plain
// decimals between 1e-6 and 1e21, shortest exponent form outside, and no
// negative zero.
func FormatNumber(n float64) string {
	switch {
	case n == 0:
		return "0"
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}

	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(n, 'e', -1, 64), "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

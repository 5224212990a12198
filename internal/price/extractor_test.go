package price

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SymbolNearName(t *testing.T) {
	text := "catalog page ... Robo Arm Model X Price: $1,234.56 more text ..."
	got := Extract(text, "Robo Arm Model X")
	require.NotNil(t, got)
	assert.Equal(t, 1234.56, *got)
}

func TestExtract_ZeroRejected(t *testing.T) {
	assert.Nil(t, Extract("Robo Arm costs $0.00 today", "Robo Arm"))
}

func TestExtract_MillionRejected(t *testing.T) {
	assert.Nil(t, Extract("Robo Arm listed at $2,000,000.00", "Robo Arm"))
}

func TestExtract_CommaAsDecimalSeparator(t *testing.T) {
	got := Extract("Gripper GX-7 ... 199,99 EUR shipping extra", "GX-7")
	require.NotNil(t, got)
	assert.Equal(t, 199.99, *got)
}

func TestExtract_KeywordPrefixed(t *testing.T) {
	got := Extract("The SmartPad unit. Cost: 450 per piece", "SmartPad")
	require.NotNil(t, got)
	assert.Equal(t, 450.0, *got)
}

func TestExtract_BareDecimalLowestPriority(t *testing.T) {
	// symbol match wins over the bare decimal even though the bare decimal
	// appears first in the window
	got := Extract("SmartPad weight 12.50 kg, $300.00 each", "SmartPad")
	require.NotNil(t, got)
	assert.Equal(t, 300.0, *got)
}

func TestExtract_WholeTextFallback(t *testing.T) {
	// price is far from the product name, outside any 200-char window
	text := "Robo Arm Model X overview." + strings.Repeat(" filler", 60) + " unit price $875.00"
	got := Extract(text, "Robo Arm Model X")
	require.NotNil(t, got)
	assert.Equal(t, 875.0, *got)
}

func TestExtract_NameCaseInsensitive(t *testing.T) {
	got := Extract("the ROBO ARM sells for $99.00", "robo arm")
	require.NotNil(t, got)
	assert.Equal(t, 99.0, *got)
}

func TestExtract_NothingQualifies(t *testing.T) {
	assert.Nil(t, Extract("Robo Arm: a six-axis industrial manipulator", "Robo Arm"))
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Nil(t, Extract("   ", "Robo Arm"))
}

func TestValid_Bounds(t *testing.T) {
	assert.True(t, Valid(0.01))
	assert.True(t, Valid(999_999.99))
	assert.False(t, Valid(0))
	assert.False(t, Valid(-5))
	assert.False(t, Valid(1_000_000))
}

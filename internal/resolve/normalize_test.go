package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalize_LowercaseAndSeparators(t *testing.T) {
	assert.Equal(t, "blue widget", Normalize("  The   Blue-Widget  "))
	assert.Equal(t, "copy paper white", Normalize("copy_paper--white"))
}

func TestNormalize_LeadingArticle(t *testing.T) {
	assert.Equal(t, "widget", Normalize("The Widget"))
	assert.Equal(t, "apple", Normalize("An Apple"))
	assert.Equal(t, "widget a", Normalize("A Widget A"))
	// Only whole-word articles are stripped.
	assert.Equal(t, "theater tickets", Normalize("Theater Tickets"))
}

func TestNormalize_BracketedCodes(t *testing.T) {
	assert.Equal(t, "nitrile gloves", Normalize("Nitrile Gloves (SKU-12345)"))
	assert.Equal(t, "drill bits", Normalize("[Kit] Drill Bits."))
}

func TestNormalize_PackSizes(t *testing.T) {
	assert.Equal(t, "paper towels", Normalize("Paper Towels 12 Pack"))
	assert.Equal(t, "nitrile gloves", Normalize("Box of 50 Nitrile Gloves"))
	assert.Equal(t, "zip ties", Normalize("Zip Ties 100ct"))
	assert.Equal(t, "screws", Normalize("Screws 100 pcs"))
}

func TestNormalize_Abbreviations(t *testing.T) {
	assert.Equal(t, "shop rags pack", Normalize("Shop Rags pkg"))
	assert.Equal(t, "label pieces", Normalize("Label pc"))
	assert.Equal(t, "count sheet", Normalize("ct sheet"))
}

func TestNormalize_TrailingUnitSuffix(t *testing.T) {
	assert.Equal(t, "coffee filters", Normalize("Coffee Filters – Case"))
}

func TestNormalize_TrailingPunctuation(t *testing.T) {
	assert.Equal(t, "trash bags", Normalize("Trash Bags!!"))
	assert.Equal(t, "trash bags", Normalize("Trash Bags. ;"))
}

func TestNormalize_SameKeyForVariants(t *testing.T) {
	assert.Equal(t, Normalize("Widget A"), Normalize("widget a (sku-1)"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Widget A",
		"widget a (sku-1)",
		"The the Widget",
		"a (x) the widget",
		"Widget 10 pc",
		"widget. ;",
		"Box of 12 – Pack",
		"(only a code)",
		"__--__",
		"An",
		"ea ea",
		"PKG pcs pc ct pk",
		"12.5 ct Stuff",
		"Nitrile Gloves (SKU-12345) - Box",
		"  [A] [B] (C) the an a Item!!!  ",
		"Coffee Filters – Case – Case",
		"Ünïcode Çafé Beans 2 bag",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

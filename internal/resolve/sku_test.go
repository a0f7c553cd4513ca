package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSKU(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"vendor prefix with dash", "Widget MCM-12345 Kit", "MCM-12345"},
		{"vendor prefix lowercase", "mcm12345 hinge", "MCM12345"},
		{"long numeric", "# 91255A123", "91255A123"},
		{"numeric only", "Bolt 123456", "123456"},
		{"letter digits dash", "Hex Bolt A12-3456", "A12-3456"},
		{"hash token", "Gloves #ab12", "AB12"},
		{"prefix beats numeric", "Kit 123456 ref AB-1234", "AB-1234"},
		{"none", "Plain Copy Paper", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSKU(tt.in))
		})
	}
}

func TestExtractSKU_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, "MCM-12345", ExtractSKU("Widget MCM-12345 Kit"))
	}
}

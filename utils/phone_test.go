package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryForPhone(t *testing.T) {
	tests := []struct {
		phone   string
		country string
		found   bool
	}{
		{"+507 6123-4567", "Panamá", true},
		{"+5076123456", "Panamá", true},
		{"+506 8888 8888", "Costa Rica", true},
		{"+57 300 1234567", "Colombia", true},
		{"+34 600 000 000", "España", true},
		{"+999 123456", "", false},
		{"06123456", "", false}, // no + prefix
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			country, found := CountryForPhone(tt.phone)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.country, country)
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+507 6123-4567"))
	assert.True(t, ValidatePhone("6123 4567"))
	assert.False(t, ValidatePhone("abc"))
	assert.False(t, ValidatePhone("+"))
	assert.False(t, ValidatePhone("0123456")) // leading zero
}

func TestValidAttachmentType(t *testing.T) {
	assert.True(t, ValidAttachmentType("application/pdf"))
	assert.True(t, ValidAttachmentType(" Application/PDF "))
	assert.True(t, ValidAttachmentType("image/png"))
	assert.False(t, ValidAttachmentType("application/x-msdownload"))
	assert.False(t, ValidAttachmentType(""))
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "porton-automatico", Slugify("Portón Automático"))
	assert.Equal(t, "motor-corredizo-1200-kg", Slugify("  Motor corredizo 1200 kg!! "))
	assert.Equal(t, "ninos", Slugify("Niños"))
	assert.Equal(t, "", Slugify("¡¿?!"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+52 (55) 1234-5678"))
	assert.True(t, ValidatePhone("5512345678"))
	assert.False(t, ValidatePhone("12ab"))
	assert.False(t, ValidatePhone("+0 123"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ana@example.com"))
	assert.False(t, ValidateEmail("Ana <ana@example.com>"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail(""))
}

package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomain(t *testing.T) {
	assert.Equal(t, "duoc.cl", Domain("estudiante@duoc.cl"))
	assert.Equal(t, "duoc.cl", Domain("  Estudiante@DUOC.CL "))
	assert.Equal(t, "profesor.duoc.cl", Domain("a@profesor.duoc.cl"))
	assert.Equal(t, "", Domain("no-domain"))
	assert.Equal(t, "", Domain("trailing@"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("mayor@gmail.com"))
	assert.True(t, IsValid(" mayor@gmail.com "))
	assert.False(t, IsValid("mayor@gmail"))
	assert.False(t, IsValid("@gmail.com"))
	assert.False(t, IsValid("a@b@gmail.com"))
	assert.False(t, IsValid("ma yor@gmail.com"))
	assert.False(t, IsValid("mayor@gmail."))
}

func TestDeriveDisplayName(t *testing.T) {
	assert.Equal(t, "Ana Rojas", DeriveDisplayName("ana.maria-rojas@duoc.cl"))
	assert.Equal(t, "Usuario", DeriveDisplayName("usuario@gmail.com"))
	assert.Equal(t, "Customer", DeriveDisplayName("@gmail.com"))
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresDSN(t *testing.T) {
	c := &Config{
		DBUser: "app", DBPassword: "secret", DBHost: "db", DBPort: "5432",
		DBName: "accounthub", DBSSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:secret@db:5432/accounthub?sslmode=disable", c.PostgresDSN())
}

func TestLanguageSupported(t *testing.T) {
	c := &Config{SupportedLanguages: "en, zh-hans"}
	assert.True(t, c.LanguageSupported("en"))
	assert.True(t, c.LanguageSupported("zh-hans"))
	assert.False(t, c.LanguageSupported("fr"))
	assert.False(t, c.LanguageSupported(""))
}

func TestSplitListTrims(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
	assert.Empty(t, splitList(""))
}

package validation

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
		msg   string
	}{
		{"", false, MsgEmailRequired},
		{"bad", false, MsgEmailInvalid},
		{"ana@club", false, MsgEmailInvalid},
		{"ana@club.padelcourt", false, MsgEmailInvalid},
		{"ana maria@club.es", false, MsgEmailInvalid},
		{"ana@club.es", true, ""},
		{"ana.lopez_92@mail.club-padel.com", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := ValidateEmail(tt.email)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.msg, got.Message)
		})
	}
}

func TestValidatePassword_Order(t *testing.T) {
	tests := []struct {
		password string
		msg      string
	}{
		{"", MsgPasswordRequired},
		{"Ab1!", MsgPasswordTooShort},
		{"abcdefg1!", MsgPasswordUppercase},
		{"ABCDEFG1!", MsgPasswordLowercase},
		{"Abcdefgh!", MsgPasswordDigit},
		{"Abcdefg12", MsgPasswordSpecial},
		// several rules fail, the first in order wins
		{"abcdefgh", MsgPasswordUppercase},
		{"short", MsgPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := ValidatePassword(tt.password)
			assert.False(t, got.Valid)
			assert.Equal(t, tt.msg, got.Message)
		})
	}

	assert.True(t, ValidatePassword("Bandeja#2024").Valid)
}

func TestValidateName(t *testing.T) {
	assert.Equal(t, MsgNameRequired, ValidateName("").Message)
	assert.Equal(t, MsgNameTooShort, ValidateName("A").Message)
	assert.Equal(t, MsgNameTooLong, ValidateName(strings.Repeat("a", 51)).Message)
	assert.True(t, ValidateName("Al").Valid)
	assert.True(t, ValidateName(strings.Repeat("a", 50)).Valid)
	// counted in characters
	assert.True(t, ValidateName("Íñ").Valid)
}

func TestPasswordRuleProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("short passwords fail on length", prop.ForAll(
		func(p string) bool {
			return ValidatePassword(p).Message == MsgPasswordTooShort
		},
		gen.RegexMatch(`[A-Za-z0-9!#]{1,7}`),
	))

	properties.Property("no uppercase fails on uppercase", prop.ForAll(
		func(p string) bool {
			return ValidatePassword(p).Message == MsgPasswordUppercase
		},
		gen.RegexMatch(`[a-z0-9!#]{8,20}`),
	))

	properties.Property("no lowercase fails on lowercase", prop.ForAll(
		func(p string) bool {
			return ValidatePassword("A"+p).Message == MsgPasswordLowercase
		},
		gen.RegexMatch(`[A-Z0-9!#]{7,19}`),
	))

	properties.Property("no digit fails on digit", prop.ForAll(
		func(p string) bool {
			return ValidatePassword("Aa"+p).Message == MsgPasswordDigit
		},
		gen.RegexMatch(`[A-Za-z!#]{6,18}`),
	))

	properties.Property("no special character fails on special", prop.ForAll(
		func(p string) bool {
			return ValidatePassword("Aa1"+p).Message == MsgPasswordSpecial
		},
		gen.RegexMatch(`[A-Za-z0-9]{5,17}`),
	))

	properties.Property("all rules satisfied is valid", prop.ForAll(
		func(p string) bool {
			return ValidatePassword("Aa1!" + p).Valid
		},
		gen.RegexMatch(`[A-Za-z0-9!#]{4,16}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestEmailProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("local@domain.tld is valid", prop.ForAll(
		func(e string) bool {
			return ValidateEmail(e).Valid
		},
		gen.RegexMatch(`[a-z0-9._-]{1,10}@[a-z0-9-]{1,10}\.[a-z]{2,6}`),
	))

	properties.Property("missing @ is invalid", prop.ForAll(
		func(e string) bool {
			return !ValidateEmail(e).Valid
		},
		gen.RegexMatch(`[a-z0-9.]{1,20}`),
	))

	properties.Property("undotted domain is invalid", prop.ForAll(
		func(e string) bool {
			return !ValidateEmail(e).Valid
		},
		gen.RegexMatch(`[a-z]{1,8}@[a-z]{1,8}`),
	))

	properties.Property("verdict is deterministic", prop.ForAll(
		func(e string) bool {
			return ValidateEmail(e) == ValidateEmail(e)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

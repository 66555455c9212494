package entity

import (
	"errors"
	"testing"

	"github.com/jgivc/rsrequest/internal/common"
	"github.com/stretchr/testify/require"
)

func TestParseCookie(t *testing.T) {
	exp := 1722364794.437907

	testCases := []struct {
		name     string
		line     string
		expected Cookie
	}{
		{
			name: "Full record",
			line: ".twitter.com;false;/;true;1722364794.437907;kdt;w1j",
			expected: Cookie{
				Domain:     ".twitter.com",
				HTTPOnly:   false,
				Path:       "/",
				Secure:     true,
				Expiration: &exp,
				Name:       "kdt",
				Value:      "w1j",
			},
		},
		{
			name: "Empty expiration",
			line: ".twitter.com;false;/;true;;kdt;w1j",
			expected: Cookie{
				Domain: ".twitter.com",
				Path:   "/",
				Secure: true,
				Name:   "kdt",
				Value:  "w1j",
			},
		},
		{
			name: "Booleans are case sensitive",
			line: "example.com;True;/;TRUE;;sid;1",
			expected: Cookie{
				Domain: "example.com",
				Path:   "/",
				Name:   "sid",
				Value:  "1",
			},
		},
		{
			name: "Value with separator is truncated",
			line: "example.com;true;/a;false;;sid;a;b",
			expected: Cookie{
				Domain:   "example.com",
				HTTPOnly: true,
				Path:     "/a",
				Name:     "sid",
				Value:    "a",
			},
		},
		{
			name: "Empty value",
			line: "example.com;false;/;false;;sid;",
			expected: Cookie{
				Domain: "example.com",
				Path:   "/",
				Name:   "sid",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ParseCookie(tc.line)
			require.NoError(t, err)
			require.Equal(t, tc.expected, c)
		})
	}
}

func TestParseCookieErrors(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		field  string
		reason string
		target error
	}{
		{
			name:   "Empty line",
			line:   "",
			field:  CookieFieldHTTPOnly,
			reason: CookieReasonMissing,
			target: common.ErrCookieFieldMissing,
		},
		{
			name:   "Missing secure",
			line:   "example.com;true;/",
			field:  CookieFieldSecure,
			reason: CookieReasonMissing,
			target: common.ErrCookieFieldMissing,
		},
		{
			name:   "Missing value",
			line:   "example.com;true;/;false;;sid",
			field:  CookieFieldValue,
			reason: CookieReasonMissing,
			target: common.ErrCookieFieldMissing,
		},
		{
			name:   "Invalid expiration",
			line:   "example.com;true;/;false;tomorrow;sid;1",
			field:  CookieFieldExpiration,
			reason: CookieReasonInvalidExpiration,
			target: common.ErrCookieFieldInvalid,
		},
		{
			name:   "NaN expiration",
			line:   "example.com;true;/;false;NaN;sid;1",
			field:  CookieFieldExpiration,
			reason: CookieReasonInvalidExpiration,
			target: common.ErrCookieFieldInvalid,
		},
		{
			name:   "Infinite expiration",
			line:   "example.com;true;/;false;Inf;sid;1",
			field:  CookieFieldExpiration,
			reason: CookieReasonInvalidExpiration,
			target: common.ErrCookieFieldInvalid,
		},
		{
			name:   "Negative infinite expiration",
			line:   "example.com;true;/;false;-Inf;sid;1",
			field:  CookieFieldExpiration,
			reason: CookieReasonInvalidExpiration,
			target: common.ErrCookieFieldInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCookie(tc.line)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.target)

			var perr *CookieParseError
			require.True(t, errors.As(err, &perr))
			require.Equal(t, tc.field, perr.Field)
			require.Equal(t, tc.reason, perr.Reason)
			require.Equal(t, tc.line, perr.Line)
		})
	}
}

func TestCookieHeaderRoundTrip(t *testing.T) {
	lines := []string{
		".twitter.com;false;/;true;1722364794.437907;kdt;w1j",
		"example.com;true;/;false;;session;abc=def",
		"a;b;c;d;;n;",
		";;;;;;",
	}

	for _, line := range lines {
		c, err := ParseCookie(line)
		require.NoError(t, err)

		parts := splitLine(line)
		require.Equal(t, parts[5]+"="+parts[6], c.Header())
	}
}

func splitLine(line string) []string {
	var (
		parts []string
		start int
	)

	for i := 0; i < len(line); i++ {
		if line[i] == ';' {
			parts = append(parts, line[start:i])
			start = i + 1
		}
	}

	return append(parts, line[start:])
}

func TestCookieNetscape(t *testing.T) {
	c, err := ParseCookie(".twitter.com;false;/;true;1722364794.437907;kdt;w1j")
	require.NoError(t, err)
	require.Equal(t, ".twitter.com\tTRUE\t/\tTRUE\t1722364794\tkdt\tw1j", c.Netscape())

	c, err = ParseCookie("twitter.com;true;/;false;;kdt;w1j")
	require.NoError(t, err)
	require.Equal(t, "twitter.com\tFALSE\t/\tFALSE\t\tkdt\tw1j", c.Netscape())

	exp := 1722364794.999
	c.Expiration = &exp
	require.Equal(t, "twitter.com\tFALSE\t/\tFALSE\t1722364794\tkdt\tw1j", c.Netscape())
}

func TestCookiesHeader(t *testing.T) {
	cookies := Cookies{
		{Name: "ads_prefs", Value: `"HBESAAA="`},
		{Name: "kdt", Value: "w1j"},
	}

	require.Equal(t, `ads_prefs="HBESAAA="; kdt=w1j`, cookies.HeaderValue())
	require.Equal(t, Header{Name: "cookie", Value: `ads_prefs="HBESAAA="; kdt=w1j`}, cookies.Header())
	require.Equal(t, "", Cookies{}.HeaderValue())
}

func TestCookiesNetscape(t *testing.T) {
	cookies := Cookies{
		{Domain: ".example.com", Path: "/", Name: "a", Value: "1"},
		{Domain: "example.com", Path: "/", Secure: true, Name: "b", Value: "2"},
	}

	expected := "# Netscape HTTP Cookie File\n\n" +
		".example.com\tTRUE\t/\tFALSE\t\ta\t1\n" +
		"example.com\tFALSE\t/\tTRUE\t\tb\t2\n"

	require.Equal(t, expected, cookies.Netscape())
}

func TestParseNetscapeLine(t *testing.T) {
	c, err := ParseNetscapeLine("#HttpOnly_.example.com\tTRUE\t/\tTRUE\t1722364794\tsid\tabc")
	require.NoError(t, err)
	require.Equal(t, ".example.com", c.Domain)
	require.True(t, c.HTTPOnly)
	require.True(t, c.Secure)
	require.NotNil(t, c.Expiration)
	require.Equal(t, float64(1722364794), *c.Expiration)
	require.Equal(t, "sid=abc", c.Header())

	c, err = ParseNetscapeLine("example.com\tFALSE\t/\tFALSE\t0\tsid\tabc")
	require.NoError(t, err)
	require.False(t, c.HTTPOnly)
	require.Nil(t, c.Expiration)
	require.Equal(t, "example.com\tFALSE\t/\tFALSE\t\tsid\tabc", c.Netscape())

	_, err = ParseNetscapeLine("example.com\tFALSE\t/")
	require.ErrorIs(t, err, common.ErrCookieFieldMissing)

	_, err = ParseNetscapeLine("example.com\tFALSE\t/\tFALSE\tsoon\tsid\tabc")
	require.ErrorIs(t, err, common.ErrCookieFieldInvalid)

	for _, exp := range []string{"NaN", "+Inf", "-Infinity"} {
		_, err = ParseNetscapeLine("example.com\tFALSE\t/\tFALSE\t" + exp + "\tsid\tabc")
		require.ErrorIs(t, err, common.ErrCookieFieldInvalid, exp)
	}
}

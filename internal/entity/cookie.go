package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jgivc/rsrequest/internal/common"
)

const (
	CookieHeaderName = "cookie"

	cookieFieldSeparator = ";"
	cookieFieldCount     = 7

	netscapeSeparator      = "\t"
	netscapeTrue           = "TRUE"
	netscapeFalse          = "FALSE"
	netscapeHeader         = "# Netscape HTTP Cookie File"
	netscapeHTTPOnlyPrefix = "#HttpOnly_"

	CookieFieldDomain     = "domain"
	CookieFieldHTTPOnly   = "httpOnly"
	CookieFieldPath       = "path"
	CookieFieldSecure     = "secure"
	CookieFieldExpiration = "expiration"
	CookieFieldName       = "name"
	CookieFieldValue      = "value"

	CookieReasonMissing           = "missing"
	CookieReasonInvalidExpiration = "invalidExpiration"
)

// Positional order of a cookie record line.
var cookieFields = [cookieFieldCount]string{
	CookieFieldDomain,
	CookieFieldHTTPOnly,
	CookieFieldPath,
	CookieFieldSecure,
	CookieFieldExpiration,
	CookieFieldName,
	CookieFieldValue,
}

// Cookie is a single cookie handed over by the orchestrator or a plugin.
// Expiration is unix epoch seconds, nil when the cookie has none.
type Cookie struct {
	Domain     string   `json:"domain"`
	HTTPOnly   bool     `json:"httpOnly"`
	Path       string   `json:"path"`
	Secure     bool     `json:"secure"`
	Expiration *float64 `json:"expiration,omitempty"`
	Name       string   `json:"name"`
	Value      string   `json:"value"`
}

// CookieParseError reports a cookie line that could not be parsed. It unwraps to
// common.ErrCookieFieldMissing or common.ErrCookieFieldInvalid.
type CookieParseError struct {
	Field  string
	Reason string
	Line   string
}

func (e *CookieParseError) Error() string {
	if e.Reason == CookieReasonInvalidExpiration {
		return fmt.Sprintf("cannot parse cookie: invalid %s in %q", e.Field, e.Line)
	}

	return fmt.Sprintf("cannot parse cookie: field %s is missing in %q", e.Field, e.Line)
}

func (e *CookieParseError) Unwrap() error {
	if e.Reason == CookieReasonInvalidExpiration {
		return common.ErrCookieFieldInvalid
	}

	return common.ErrCookieFieldMissing
}

/*
ParseCookie reads one cookie record of 7 semicolon separated fields:

	domain;httpOnly;path;secure;expiration;name;value

Booleans are true only for the exact string "true". An empty expiration means
the cookie has none. A value containing ';' is truncated at the first ';'.
*/
func ParseCookie(line string) (Cookie, error) {
	parts := strings.Split(line, cookieFieldSeparator)

	if len(parts) < cookieFieldCount {
		return Cookie{}, &CookieParseError{
			Field:  cookieFields[len(parts)],
			Reason: CookieReasonMissing,
			Line:   line,
		}
	}

	c := Cookie{
		Domain:   parts[0],
		HTTPOnly: parts[1] == "true",
		Path:     parts[2],
		Secure:   parts[3] == "true",
		Name:     parts[5],
		Value:    parts[6],
	}

	if exp := parts[4]; exp != "" {
		v, err := strconv.ParseFloat(exp, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Cookie{}, &CookieParseError{
				Field:  CookieFieldExpiration,
				Reason: CookieReasonInvalidExpiration,
				Line:   line,
			}
		}

		c.Expiration = &v
	}

	return c, nil
}

// ParseNetscapeLine reads one tab separated cookies.txt line. The include
// subdomains column is ignored, a "#HttpOnly_" domain prefix sets HTTPOnly and
// an expiration of 0 means a session cookie.
func ParseNetscapeLine(line string) (Cookie, error) {
	parts := strings.Split(line, netscapeSeparator)
	if len(parts) < cookieFieldCount {
		return Cookie{}, &CookieParseError{
			Field:  netscapeFields[len(parts)],
			Reason: CookieReasonMissing,
			Line:   line,
		}
	}

	c := Cookie{
		Domain: parts[0],
		Path:   parts[2],
		Secure: strings.EqualFold(parts[3], netscapeTrue),
		Name:   parts[5],
		Value:  parts[6],
	}

	if strings.HasPrefix(c.Domain, netscapeHTTPOnlyPrefix) {
		c.Domain = strings.TrimPrefix(c.Domain, netscapeHTTPOnlyPrefix)
		c.HTTPOnly = true
	}

	if exp := parts[4]; exp != "" && exp != "0" {
		v, err := strconv.ParseFloat(exp, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Cookie{}, &CookieParseError{
				Field:  CookieFieldExpiration,
				Reason: CookieReasonInvalidExpiration,
				Line:   line,
			}
		}

		c.Expiration = &v
	}

	return c, nil
}

var netscapeFields = [cookieFieldCount]string{
	CookieFieldDomain,
	"includeSubdomains",
	CookieFieldPath,
	CookieFieldSecure,
	CookieFieldExpiration,
	CookieFieldName,
	CookieFieldValue,
}

// Netscape renders the cookie as a cookies.txt line. The second column is the
// include subdomains flag, derived from a leading dot in the domain.
func (c Cookie) Netscape() string {
	exp := ""
	if c.Expiration != nil {
		exp = strconv.FormatInt(int64(*c.Expiration), 10)
	}

	return strings.Join([]string{
		c.Domain,
		netscapeBool(strings.HasPrefix(c.Domain, ".")),
		c.Path,
		netscapeBool(c.Secure),
		exp,
		c.Name,
		c.Value,
	}, netscapeSeparator)
}

// Header renders the cookie as name=value.
func (c Cookie) Header() string {
	return c.Name + "=" + c.Value
}

func netscapeBool(v bool) string {
	if v {
		return netscapeTrue
	}

	return netscapeFalse
}

type Cookies []Cookie

// HeaderValue joins the cookies into a Cookie header value keeping their order.
func (cs Cookies) HeaderValue() string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.Header())
	}

	return strings.Join(parts, "; ")
}

func (cs Cookies) Header() Header {
	return Header{Name: CookieHeaderName, Value: cs.HeaderValue()}
}

// Netscape renders a whole cookies.txt document.
func (cs Cookies) Netscape() string {
	var b strings.Builder
	b.WriteString(netscapeHeader)
	b.WriteString("\n\n")

	for _, c := range cs {
		b.WriteString(c.Netscape())
		b.WriteString("\n")
	}

	return b.String()
}

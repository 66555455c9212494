package cookiefile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jgivc/rsrequest/internal/config"
	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/spf13/afero"
)

const (
	commentPrefix  = "#"
	httpOnlyPrefix = "#HttpOnly_"
)

type cookieReader struct {
	fs          afero.Fs
	parse       func(string) (entity.Cookie, error)
	skipInvalid bool
	log         *slog.Logger
}

func NewCookieReader(cfg *config.CookieConfig, log *slog.Logger) (*cookieReader, error) {
	return NewCookieReaderWithFS(afero.NewOsFs(), cfg, log)
}

func NewCookieReaderWithFS(fs afero.Fs, cfg *config.CookieConfig, log *slog.Logger) (*cookieReader, error) {
	var parse func(string) (entity.Cookie, error)

	switch cfg.Format {
	case config.CookieFormatRecord, "":
		parse = entity.ParseCookie
	case config.CookieFormatNetscape:
		parse = entity.ParseNetscapeLine
	default:
		return nil, fmt.Errorf("unknown cookie format: %q", cfg.Format)
	}

	return &cookieReader{
		fs:          fs,
		parse:       parse,
		skipInvalid: cfg.SkipInvalid,
		log:         log.With(slog.String("item", "CookieReader")),
	}, nil
}

func (c *cookieReader) ReadFile(path string) (entity.Cookies, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open cookie file %s: %w", path, err)
	}
	defer f.Close()

	cookies, err := c.Read(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read cookie file %s: %w", path, err)
	}

	c.log.Debug("Read cookies", slog.String("path", path), slog.Int("count", len(cookies)))

	return cookies, nil
}

/*
Read parses one cookie per line. Blank lines and comments are skipped, a
"#HttpOnly_" line is a cookie. A malformed line fails the whole read unless
invalid lines are skipped.
*/
func (c *cookieReader) Read(r io.Reader) (entity.Cookies, error) {
	var (
		cookies entity.Cookies
		n       int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		n++

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, commentPrefix) && !strings.HasPrefix(line, httpOnlyPrefix) {
			continue
		}

		cookie, err := c.parse(line)
		if err != nil {
			if c.skipInvalid {
				c.log.Warn("Skip invalid cookie line", slog.Int("line", n), slog.Any("error", err))

				continue
			}

			return nil, fmt.Errorf("cannot parse cookie at line %d: %w", n, err)
		}

		cookies = append(cookies, cookie)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot scan cookies: %w", err)
	}

	return cookies, nil
}

package resolve

import (
	"log/slog"

	"github.com/jgivc/rsrequest/internal/entity"
)

type Preparer struct {
	parser  entity.FilenameParser
	cookies entity.Cookies
	log     *slog.Logger
}

// NewPreparer returns a Preparer that adds cookies to the cookie header of
// every request it prepares. cookies may be empty.
func NewPreparer(parser entity.FilenameParser, cookies entity.Cookies, log *slog.Logger) *Preparer {
	return &Preparer{
		parser:  parser,
		cookies: cookies,
		log:     log.With(slog.String("item", "Preparer")),
	}
}

// Prepare builds a cookie header from the request cookies followed by the
// configured ones and fills the media fields recognized in the filename.
// r.Cookies is left as is. Each call appends one more cookie header.
func (p *Preparer) Prepare(r *entity.Request) {
	cookies := make(entity.Cookies, 0, len(r.Cookies)+len(p.cookies))
	cookies = append(cookies, r.Cookies...)
	cookies = append(cookies, p.cookies...)

	r.AddCookies(cookies)
	r.ParseFilename(p.parser)

	p.log.Debug("Prepared request",
		slog.String("url", r.URL),
		slog.Int("cookies", len(cookies)),
		slog.Int("headers", len(r.Headers)),
	)
}

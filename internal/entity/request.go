package entity

import (
	"encoding/json"
	"fmt"

	"github.com/jgivc/rsrequest/internal/common"
)

// Request is a downloadable link on its way from an unresolved url to a
// fetchable resource. It is the aggregate exchanged between the orchestrator
// and the resolver plugins; only one side owns it at a time.
type Request struct {
	URL          string        `json:"url"`
	Mime         *string       `json:"mime,omitempty"`
	Size         *uint64       `json:"size,omitempty"`
	Filename     *string       `json:"filename,omitempty"`
	Status       Status        `json:"status"`
	Referer      *string       `json:"referer,omitempty"`
	Headers      []Header      `json:"headers,omitempty"` // Order matters, names may repeat
	Cookies      Cookies       `json:"cookies,omitempty"`
	Files        []RequestFile `json:"files,omitempty"`
	SelectedFile *string       `json:"selectedFile,omitempty"` // Name of one of Files

	Description *string      `json:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	People      []string     `json:"people,omitempty"`
	Albums      []string     `json:"albums,omitempty"`
	Season      *uint32      `json:"season,omitempty"`
	Episode     *uint32      `json:"episode,omitempty"`
	Language    *string      `json:"language,omitempty"`
	Resolution  *Resolution  `json:"resolution,omitempty"`
	VideoCodec  *VideoCodec  `json:"videocodec,omitempty"`
	Audio       []AudioTrack `json:"audio,omitempty"`
	Quality     *uint64      `json:"quality,omitempty"`
}

func NewRequest(url string) *Request {
	return &Request{URL: url}
}

// Header is a single header line. It is serialized as a [name, value] pair.
type Header struct {
	Name  string
	Value string
}

func (h Header) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{h.Name, h.Value})
}

func (h *Header) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("cannot decode header: %w", err)
	}

	if len(pair) != 2 {
		return fmt.Errorf("cannot decode header: expected [name, value], got %d items", len(pair))
	}

	h.Name, h.Value = pair[0], pair[1]

	return nil
}

// AddHeader appends a header line, existing lines with the same name are kept.
func (r *Request) AddHeader(name, value string) {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// AddCookies appends one cookie header built from cookies. Repeated calls add
// repeated headers. An empty list adds nothing.
func (r *Request) AddCookies(cookies Cookies) {
	if len(cookies) == 0 {
		return
	}

	r.Headers = append(r.Headers, cookies.Header())
}

// ParseFilename fills the media fields recognized in the filename. Fields
// that were not recognized keep their value. Nothing happens without filename.
func (r *Request) ParseFilename(p FilenameParser) {
	if r.Filename == nil {
		return
	}

	m := p.Parse(*r.Filename)

	if m.Resolution != nil {
		v := *m.Resolution
		r.Resolution = &v
	}

	if m.VideoCodec != nil {
		v := *m.VideoCodec
		r.VideoCodec = &v
	}

	if len(m.Audio) > 0 {
		r.Audio = append([]AudioTrack(nil), m.Audio...)
	}

	if m.Season != nil {
		v := *m.Season
		r.Season = &v
	}

	if m.Episode != nil {
		v := *m.Episode
		r.Episode = &v
	}
}

// File returns the file candidate with the given name.
func (r *Request) File(name string) (RequestFile, error) {
	for _, f := range r.Files {
		if f.Name == name {
			return f, nil
		}
	}

	return RequestFile{}, fmt.Errorf("%w: %s", common.ErrFileNotFound, name)
}

// Selected returns the file candidate named by SelectedFile.
func (r *Request) Selected() (RequestFile, error) {
	if r.SelectedFile == nil {
		return RequestFile{}, common.ErrFileSelectionRequired
	}

	return r.File(*r.SelectedFile)
}

// SelectFile sets SelectedFile. The name must be one of Files.
func (r *Request) SelectFile(name string) error {
	if _, err := r.File(name); err != nil {
		return fmt.Errorf("cannot select file: %w", err)
	}

	r.SelectedFile = &name

	return nil
}

// Validate checks the consumer side contract: a non empty url and a selected
// file present in Files.
func (r *Request) Validate() error {
	if r.URL == "" {
		return common.ErrEmptyURL
	}

	if !r.Status.Valid() {
		return fmt.Errorf("%w: %d", common.ErrUnknownStatus, int(r.Status))
	}

	if r.SelectedFile != nil {
		if _, err := r.File(*r.SelectedFile); err != nil {
			return fmt.Errorf("invalid selected file: %w", err)
		}
	}

	return nil
}

// Clone returns a copy with its own slices. Optional scalar fields are shared
// and must be replaced, not written through.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = append([]Header(nil), r.Headers...)
	c.Cookies = append(Cookies(nil), r.Cookies...)
	c.Files = append([]RequestFile(nil), r.Files...)
	c.Tags = append([]string(nil), r.Tags...)
	c.People = append([]string(nil), r.People...)
	c.Albums = append([]string(nil), r.Albums...)
	c.Audio = append([]AudioTrack(nil), r.Audio...)

	return &c
}

package mdadapter

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	startSeq = []byte{'[', '['}
	endSeq   = []byte{']', ']'}
	labelSeq = []byte{'|'}
	allFiles = []byte("FILES")
)

/*
 * [[name.mkv]]
 * [[name.mkv|Label]]
 * [[FILES]] - all files
 */
type FileDirectiveParser struct{}

func NewFileDirectiveParser() parser.InlineParser {
	return &FileDirectiveParser{}
}

func (s *FileDirectiveParser) Trigger() []byte {
	return startSeq[:1]
}

func (s *FileDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	b, _ := block.PeekLine()
	if !bytes.HasPrefix(b, startSeq) {
		return nil
	}

	end := bytes.Index(b, endSeq)
	if end < 0 {
		return nil
	}

	line := bytes.TrimSpace(b[len(startSeq):end])
	if len(line) == 0 {
		return nil
	}

	block.Advance(end + len(endSeq))

	if bytes.Equal(line, allFiles) {
		return &FileDirective{AllFiles: true}
	}

	if name, label, ok := bytes.Cut(line, labelSeq); ok {
		return &FileDirective{
			Filename: string(bytes.TrimSpace(name)),
			Label:    string(bytes.TrimSpace(label)),
		}
	}

	return &FileDirective{Filename: string(line)}
}

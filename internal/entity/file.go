package entity

// RequestFile is one of the files a remote item may resolve to.
type RequestFile struct {
	Name string  `json:"name" yaml:"name"` // Name used by Request.SelectedFile
	Size uint64  `json:"size" yaml:"size"` // The size of the file in bytes
	Mime *string `json:"mime,omitempty" yaml:"mime,omitempty"`
}

func NewRequestFile(name string, size uint64, mime string) RequestFile {
	f := RequestFile{Name: name, Size: size}
	if mime != "" {
		f.Mime = &mime
	}

	return f
}

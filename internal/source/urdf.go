package source

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/robostock/catalog-ingest/internal/entity"
)

var urdfExtensions = map[string]struct{}{
	".urdf": {},
	".xml":  {},
}

// URDFSource lists and flattens URDF robot-description files from a local
// directory. It implements both Lister and TextProvider.
type URDFSource struct {
	Dir    string
	Logger *slog.Logger
}

func NewURDFSource(dir string, logger *slog.Logger) *URDFSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &URDFSource{Dir: dir, Logger: logger}
}

// List walks the directory for URDF/XML files. A missing directory is not an
// error; it lists as empty so a PDF-only deployment needs no setup.
func (s *URDFSource) List(_ context.Context) ([]entity.SourceDocument, error) {
	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		s.Logger.Info("urdf.dir_missing", "dir", s.Dir)
		return nil, nil
	}

	var docs []entity.SourceDocument
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := urdfExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		docs = append(docs, entity.SourceDocument{
			FileName:  filepath.Base(path),
			OriginKey: path,
			FilePath:  path,
			Kind:      entity.SourceURDFExtract,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.Dir, err)
	}
	return docs, nil
}

// FetchText parses the file as XML and flattens it to one line per element:
// element name, attribute values, then character data. URDF carries its
// product identity in link/joint names and mesh file attributes, so a flat
// rendering is enough for the matching step.
func (s *URDFSource) FetchText(_ context.Context, doc entity.SourceDocument) (entity.ExtractedDocument, error) {
	raw, err := os.ReadFile(doc.OriginKey)
	if err != nil {
		return entity.ExtractedDocument{}, fmt.Errorf("read %s: %w", doc.OriginKey, err)
	}

	text, err := Flatten(raw)
	if err != nil {
		return entity.ExtractedDocument{}, fmt.Errorf("flatten %s: %w", doc.FileName, err)
	}
	return entity.ExtractedDocument{
		FullText: text,
		PageMap:  []entity.PageText{{Page: 1, Text: text}},
	}, nil
}

// Flatten renders an XML document as line-oriented text.
func Flatten(raw []byte) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(raw)))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var parts []string
			parts = append(parts, t.Name.Local)
			for _, a := range t.Attr {
				if v := strings.TrimSpace(a.Value); v != "" {
					parts = append(parts, a.Name.Local+"="+v)
				}
			}
			b.WriteString(strings.Join(parts, " "))
			b.WriteString("\n")
		case xml.CharData:
			if v := strings.TrimSpace(string(t)); v != "" {
				b.WriteString(v)
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

package format

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-ini/ini"

	"github.com/mwantia/cncmaps/data"
)

const includeSection = "#include"

// IniFile is a parsed rules style INI document. Section and key names are
// case-insensitive.
type IniFile struct {
	Name string
	file *ini.File
}

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		Insensitive:             true,
		Loose:                   true,
		SkipUnrecognizableLines: true,
		IgnoreContinuation:      true,
	}
}

func DecodeIni(name string, buf []byte) (*IniFile, error) {
	f, err := ini.LoadSources(loadOptions(), buf)
	if err != nil {
		return nil, data.NewFormatError("ini", name, err)
	}
	return &IniFile{Name: name, file: f}, nil
}

// NewIniFile returns an empty document.
func NewIniFile(name string) *IniFile {
	return &IniFile{Name: name, file: ini.Empty(loadOptions())}
}

func (f *IniFile) section(name string) *ini.Section {
	sec, err := f.file.GetSection(name)
	if err != nil {
		return nil
	}
	return sec
}

func (f *IniFile) Has(section string) bool {
	return f.section(section) != nil
}

func (f *IniFile) HasKey(section, key string) bool {
	sec := f.section(section)
	return sec != nil && sec.HasKey(key)
}

func (f *IniFile) String(section, key, def string) string {
	sec := f.section(section)
	if sec == nil || !sec.HasKey(key) {
		return def
	}
	if v := strings.TrimSpace(sec.Key(key).String()); v != "" {
		return v
	}
	return def
}

func (f *IniFile) Int(section, key string, def int) int {
	sec := f.section(section)
	if sec == nil || !sec.HasKey(key) {
		return def
	}
	return sec.Key(key).MustInt(def)
}

func (f *IniFile) Float(section, key string, def float64) float64 {
	sec := f.section(section)
	if sec == nil || !sec.HasKey(key) {
		return def
	}
	return parsePercent(sec.Key(key).String(), def)
}

// parsePercent reads "0.5" and "50%" as the same value.
func parsePercent(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	if percent {
		return v / 100
	}
	return v
}

func (f *IniFile) Bool(section, key string, def bool) bool {
	sec := f.section(section)
	if sec == nil || !sec.HasKey(key) {
		return def
	}
	return sec.Key(key).MustBool(def)
}

// Keys returns the key names of section in document order.
func (f *IniFile) Keys(section string) []string {
	sec := f.section(section)
	if sec == nil {
		return nil
	}
	return sec.KeyStrings()
}

// Values returns the distinct non-empty values of a list section in
// document order.
func (f *IniFile) Values(section string) []string {
	sec := f.section(section)
	if sec == nil {
		return nil
	}

	seen := make(map[string]struct{})
	values := make([]string, 0, len(sec.Keys()))
	for _, key := range sec.Keys() {
		v := strings.TrimSpace(key.String())
		if v == "" {
			continue
		}
		lower := strings.ToLower(v)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		values = append(values, v)
	}
	return values
}

func (f *IniFile) Sections() []string {
	names := make([]string, 0)
	for _, sec := range f.file.Sections() {
		if strings.EqualFold(sec.Name(), ini.DefaultSection) {
			continue
		}
		names = append(names, sec.Name())
	}
	return names
}

// MergeWith copies every key of other into f. Keys of other replace keys
// of f with the same name.
func (f *IniFile) MergeWith(other *IniFile) {
	if other == nil {
		return
	}

	for _, src := range other.file.Sections() {
		if strings.EqualFold(src.Name(), ini.DefaultSection) && len(src.Keys()) == 0 {
			continue
		}

		dst := f.file.Section(src.Name())
		for _, key := range src.Keys() {
			dst.Key(key.Name()).SetValue(key.Value())
		}
	}
}

// MergeIncludes merges the documents listed in the [#include] section in
// order, following nested includes. Missing documents are skipped.
func (f *IniFile) MergeIncludes(ctx context.Context, open func(ctx context.Context, name string) (*IniFile, error)) error {
	visited := map[string]struct{}{strings.ToLower(f.Name): {}}
	return f.mergeIncludes(ctx, f, open, visited)
}

func (f *IniFile) mergeIncludes(ctx context.Context, doc *IniFile, open func(ctx context.Context, name string) (*IniFile, error), visited map[string]struct{}) error {
	for _, name := range doc.Values(includeSection) {
		lower := strings.ToLower(name)
		if _, ok := visited[lower]; ok {
			continue
		}
		visited[lower] = struct{}{}

		inc, err := open(ctx, name)
		if err != nil {
			if errors.Is(err, data.ErrNotExist) {
				continue
			}
			return err
		}

		f.MergeWith(inc)
		if err := f.mergeIncludes(ctx, inc, open, visited); err != nil {
			return err
		}
	}
	return nil
}

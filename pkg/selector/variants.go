package selector

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// FileList returns its paths as given, whether or not they exist.
type FileList struct {
	Files []string
}

func (FileList) Type() string { return TypeFile }

func (s FileList) Resolve(Env) ([]string, error) {
	out := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		out = append(out, cleanRel(f))
	}
	return dedupe(out), nil
}

func parseFileList(args *value.Value) (Selector, error) {
	files, ok := args.Get("files")
	if !ok || !files.IsArray() {
		return nil, fmt.Errorf("files must be a list")
	}
	return FileList{Files: files.Strings()}, nil
}

// PathGlob lists the children of Path, or all descendants when Recursive.
// With Regex set only entries whose path relative to Path fully matches it
// are kept.
type PathGlob struct {
	Path      string
	Recursive bool
	Regex     *regexp.Regexp
}

func (PathGlob) Type() string { return TypePath }

func (s PathGlob) Resolve(env Env) ([]string, error) {
	root := cleanRel(s.Path)
	pattern := "*"
	if s.Recursive {
		pattern = "**/*"
	}
	if root != "." {
		pattern = root + "/" + pattern
	}

	matches, err := doublestar.Glob(afero.NewIOFS(env.Fs), pattern)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if s.Regex != nil {
			rel := m
			if root != "." {
				rel = strings.TrimPrefix(m, root+"/")
			}
			if !s.Regex.MatchString(rel) {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return dedupe(out), nil
}

func parsePathGlob(args *value.Value) (Selector, error) {
	var raw struct {
		Path      string `mapstructure:"path"`
		Recursive bool   `mapstructure:"recursive"`
		Regex     string `mapstructure:"regex"`
	}
	if err := args.Bind(&raw); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(cleanRel(raw.Path)) {
		return nil, fmt.Errorf("bad path %q", raw.Path)
	}
	sel := PathGlob{Path: raw.Path, Recursive: raw.Recursive}
	if args.Has("regex") {
		re, err := regexp.Compile(`^(?:` + raw.Regex + `)$`)
		if err != nil {
			return nil, err
		}
		sel.Regex = re
	}
	return sel, nil
}

// Identifier categories and the asset folder each maps to.
var identifierCategories = []struct {
	keys   []string
	folder string
}{
	{[]string{"models"}, "models"},
	{[]string{"blockstates", "blocksates"}, "blockstates"},
	{[]string{"lang"}, "lang"},
}

// Identifiers maps namespaced identifiers to asset paths, models first,
// then blockstates, then lang files.
type Identifiers struct {
	Models      []string
	Blockstates []string
	Lang        []string
}

func (Identifiers) Type() string { return TypeIdentifier }

func (s Identifiers) Resolve(Env) ([]string, error) {
	var out []string
	for _, id := range s.Models {
		out = append(out, IdentifierPath(id, "models", "json"))
	}
	for _, id := range s.Blockstates {
		out = append(out, IdentifierPath(id, "blockstates", "json"))
	}
	for _, id := range s.Lang {
		out = append(out, IdentifierPath(id, "lang", "json"))
	}
	return dedupe(out), nil
}

func parseIdentifiers(args *value.Value) (Selector, error) {
	lists := make([][]string, len(identifierCategories))
	for i, cat := range identifierCategories {
		for _, key := range cat.keys {
			if v, ok := args.Get(key); ok {
				lists[i] = append(lists[i], v.Strings()...)
			}
		}
	}
	return Identifiers{Models: lists[0], Blockstates: lists[1], Lang: lists[2]}, nil
}

// Block names a block for block selectors. Name is the plural form when
// Plural is set, e.g. "bricks".
type Block struct {
	Name   string `mapstructure:"block"`
	Plural bool   `mapstructure:"plural"`
}

// Singular drops the trailing character of a plural name.
func (b Block) Singular() string {
	if b.Plural && len(b.Name) > 0 {
		return b.Name[:len(b.Name)-1]
	}
	return b.Name
}

// Expand fills the [block_name] and [block_name_plural] placeholders.
func (b Block) Expand(template string) string {
	r := strings.NewReplacer("[block_name_plural]", b.Name, "[block_name]", b.Singular())
	return r.Replace(template)
}

// Blocks expands the block file templates for every block and keeps the
// paths that exist.
type Blocks struct {
	Blocks []Block
}

func (Blocks) Type() string { return TypeBlock }

func (s Blocks) Resolve(env Env) ([]string, error) {
	var out []string
	for _, b := range s.Blocks {
		for _, tmpl := range env.BlockFiles {
			p := cleanRel(b.Expand(tmpl))
			if _, err := env.Fs.Stat(p); err != nil {
				if isNotExist(err) {
					continue
				}
				return nil, err
			}
			out = append(out, p)
		}
	}
	return dedupe(out), nil
}

func parseBlocks(args *value.Value) (Selector, error) {
	list, ok := args.Get("blocks")
	if !ok || !list.IsArray() {
		return nil, fmt.Errorf("blocks must be a list")
	}
	blocks, err := ParseBlockList(list)
	if err != nil {
		return nil, err
	}
	return Blocks{Blocks: blocks}, nil
}

// ParseBlockList reads block descriptors. A bare string is a singular
// block name.
func ParseBlockList(list *value.Value) ([]Block, error) {
	var blocks []Block
	for _, item := range list.Items() {
		if name, ok := item.AsString(); ok {
			blocks = append(blocks, Block{Name: name})
			continue
		}
		var b Block
		if err := item.Bind(&b); err != nil {
			return nil, err
		}
		if b.Name == "" {
			return nil, fmt.Errorf("block descriptor needs a block name")
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Union resolves nested selectors and merges their paths, dropping
// duplicates. Paths appear in the order they were first produced.
type Union struct {
	Selectors []Selector
}

func (Union) Type() string { return TypeUnion }

func (s Union) Resolve(env Env) ([]string, error) {
	var all []string
	for _, sel := range s.Selectors {
		paths, err := sel.Resolve(env)
		if err != nil {
			return nil, err
		}
		all = append(all, paths...)
	}
	return dedupe(all), nil
}

func parseUnion(args *value.Value) (Selector, error) {
	list, ok := args.Get("selectors")
	if !ok || !list.IsArray() {
		return nil, fmt.Errorf("selectors must be a list")
	}
	u := Union{}
	for _, rule := range list.Items() {
		sel, err := Parse(rule)
		if err != nil {
			return nil, err
		}
		u.Selectors = append(u.Selectors, sel)
	}
	return u, nil
}

// IdentifierPath maps "namespace:name" (or a bare "name" in the minecraft
// namespace) to assets/<namespace>/<folder>/<name>.<ext>. An empty
// namespace (":name") also means minecraft, as it does in game. A prefix
// that is not a valid namespace is kept as part of the name.
func IdentifierPath(id, folder, ext string) string {
	namespace := "minecraft"
	name := id
	if i := strings.Index(id, ":"); i >= 0 {
		if ns := id[:i]; validNamespace(ns) {
			name = id[i+1:]
			if ns != "" {
				namespace = ns
			}
		}
	}
	return path.Join("assets", namespace, folder, path.Clean(name)+"."+ext)
}

func validNamespace(ns string) bool {
	for _, r := range ns {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

func cleanRel(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

package packer

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/config"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/pack"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/paths"
)

const packSource = "/mc/resourcepacks/Stay True"

type env struct {
	fs     afero.Fs
	paths  *paths.Paths
	packer *Packer
}

func newEnv(t *testing.T, prompter Prompter) *env {
	t.Helper()
	fsys := afero.NewMemMapFs()
	p, err := paths.New(config.Locations{Minecraft: "/mc", WorkingDirectory: "/work"})
	require.NoError(t, err)

	files := map[string]string{
		"assets/minecraft/models/block/stone.json": "{\n  \"parent\": \"block/cube_all\",\n  \"textures\": {\"all\": \"block/stone\"}\n}\n",
		"assets/minecraft/models/block/dirt.json":  `{"parent": "block/cube_all"}`,
		"assets/minecraft/textures/block/stone.png": "png",
		"assets/minecraft/textures/item/stick.png":  "png",
		"assets/minecraft/optifine/ctm/.keep":       "",
		"pack.png":                                  "png",
	}
	for name, content := range files {
		full := filepath.Join(packSource, name)
		require.NoError(t, fsys.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, afero.WriteFile(fsys, full, []byte(content), 0644))
	}
	// the placeholder file is only there to create the directory
	require.NoError(t, fsys.Remove(filepath.Join(packSource, "assets/minecraft/optifine/ctm/.keep")))

	patches := map[string]string{
		"base.json":   `{"patches": [{"type": "remove", "patch": {"files": ["assets/minecraft/models/block/dirt.json"]}}]}`,
		"broken.json": `{"patches": [{"type": "replace", "patch": {"directory": "missing"}}]}`,
	}
	for name, content := range patches {
		require.NoError(t, afero.WriteFile(fsys, filepath.Join("/work/patches", name), []byte(content), 0644))
	}

	return &env{
		fs:    fsys,
		paths: p,
		packer: New(Options{
			Fs:          fsys,
			Locations:   p,
			Workers:     3,
			CopyWorkers: 4,
			Prompter:    prompter,
			Logger:      zerolog.Nop(),
		}),
	}
}

func stayTrue(configs ...pack.Config) *pack.Pack {
	return &pack.Pack{
		Name:        "stay_true",
		Directory:   "#packdir/Stay True",
		NameScheme:  "#name v#version - #mcversion",
		Description: "Stay True",
		Configs:     configs,
	}
}

var buildOption = pack.RunOption{
	Name:               "build",
	Configs:            pack.Selection{All: true},
	MinifyJSON:         true,
	DeleteEmptyFolders: true,
	ZipPack:            true,
	Validate:           true,
}

func zipEntries(t *testing.T, fsys afero.Fs, name string) []string {
	t.Helper()
	data, err := afero.ReadFile(fsys, name)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func zipContents(t *testing.T, fsys afero.Fs, name string) map[string][]byte {
	t.Helper()
	data, err := afero.ReadFile(fsys, name)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	contents := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[f.Name] = b
	}
	return contents
}

func TestBuildSingleConfig(t *testing.T) {
	e := newEnv(t, nil)
	p := stayTrue(pack.Config{
		Name:               "1.20",
		MCVersions:         []string{"1.20.1"},
		Textures:           pack.Textures{Delete: true, Ignore: []string{"Block"}},
		MinifyJSON:         true,
		DeleteEmptyFolders: true,
		Patches:            []string{"base"},
	})

	res, err := e.packer.Build(context.Background(), Request{Pack: p, RunOption: buildOption, VersionLabel: "1.0"})
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, "1.0", res.Version)

	c := res.Configs[0]
	assert.Equal(t, "Stay True v1.0 - 1.20.1", c.Name)
	assert.Equal(t, "/work/temp/1.20", c.BuildDir)
	assert.Equal(t, "/work/out/Stay True v1.0 - 1.20.1.zip", c.Archive)
	assert.Equal(t, 15, c.PackFormat)
	assert.Equal(t, 5, c.Copied)
	assert.Empty(t, c.PatchErrors)
	require.NotNil(t, c.Validation)
	assert.True(t, c.Validation.OK())
	assert.NotZero(t, c.Fingerprint)

	assert.Equal(t, []string{
		"assets/minecraft/models/block/stone.json",
		"assets/minecraft/textures/block/stone.png",
		"pack.mcmeta",
		"pack.png",
	}, zipEntries(t, e.fs, c.Archive))

	build := filesystem.Sandbox(e.fs, c.BuildDir)
	meta, err := afero.ReadFile(build, "pack.mcmeta")
	require.NoError(t, err)
	assert.Equal(t, `{"pack":{"pack_format":15,"description":"Stay True"}}`, string(meta))

	stone, err := afero.ReadFile(build, "assets/minecraft/models/block/stone.json")
	require.NoError(t, err)
	assert.Equal(t, `{"parent":"block/cube_all","textures":{"all":"block/stone"}}`, string(stone))

	assert.False(t, filesystem.Exists(build, "assets/minecraft/optifine"))
	assert.False(t, filesystem.Exists(build, "assets/minecraft/textures/item"))
}

func TestBuildParallelConfigs(t *testing.T) {
	e := newEnv(t, nil)
	p := stayTrue(
		pack.Config{Name: "1.19", MCVersions: []string{"1.19.4"}},
		pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}, Patches: []string{"base"}},
		pack.Config{Name: "1.21", MCVersions: []string{"1.21"}},
	)
	opt := pack.RunOption{Name: "dev", Configs: pack.Selection{All: true}}

	res, err := e.packer.Build(context.Background(), Request{Pack: p, RunOption: opt, VersionLabel: "DEV"})
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Successful)
	assert.Equal(t, []string{"1.19", "1.20", "1.21"}, res.Names())

	formats := map[string]int{"1.19": 13, "1.20": 15, "1.21": 34}
	fingerprints := map[uint64]bool{}
	for _, c := range res.Configs {
		assert.Equal(t, formats[c.Config], c.PackFormat, c.Config)
		assert.Equal(t, c.BuildDir, c.Archive)
		fingerprints[c.Fingerprint] = true

		build := filesystem.Sandbox(e.fs, c.BuildDir)
		meta, err := afero.ReadFile(build, "pack.mcmeta")
		require.NoError(t, err)
		assert.Contains(t, string(meta), fmt.Sprintf(`"pack_format": %d`, formats[c.Config]))
		// only 1.20 applies the patch
		assert.Equal(t, c.Config != "1.20", filesystem.Exists(build, "assets/minecraft/models/block/dirt.json"), c.Config)
		// without minify the source formatting survives
		stone, err := afero.ReadFile(build, "assets/minecraft/models/block/stone.json")
		require.NoError(t, err)
		assert.Contains(t, string(stone), "\n  \"parent\"")
	}
	assert.Len(t, fingerprints, 3)
}

func TestBuildUntouchedPackIsCopiedVerbatim(t *testing.T) {
	e := newEnv(t, nil)
	p := stayTrue(pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}})
	opt := pack.RunOption{Name: "release", Configs: pack.Selection{All: true}, ZipPack: true}

	res, err := e.packer.Build(context.Background(), Request{Pack: p, RunOption: opt, VersionLabel: "1.0"})
	require.NoError(t, err)
	require.NoError(t, res.Error)
	require.Equal(t, 1, res.Successful)

	contents := zipContents(t, e.fs, res.Configs[0].Archive)
	sources, err := filesystem.Files(e.fs, packSource)
	require.NoError(t, err)
	require.NotEmpty(t, sources)
	for _, rel := range sources {
		want, err := afero.ReadFile(e.fs, filepath.Join(packSource, filesystem.Rel(rel)))
		require.NoError(t, err)
		got, ok := contents[rel]
		require.True(t, ok, rel)
		assert.Equal(t, want, got, rel)
		delete(contents, rel)
	}

	// pack.mcmeta is the only file the build adds
	require.Len(t, contents, 1)
	assert.Contains(t, string(contents["pack.mcmeta"]), `"pack_format": 15`)
}

func TestBuildParallelZips(t *testing.T) {
	e := newEnv(t, nil)
	p := stayTrue(
		pack.Config{Name: "1.19", MCVersions: []string{"1.19.4"}},
		pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}, Patches: []string{"base"}},
		pack.Config{Name: "1.21", MCVersions: []string{"1.21"}},
	)
	opt := pack.RunOption{Name: "release", Configs: pack.Selection{All: true}, ZipPack: true}

	res, err := e.packer.Build(context.Background(), Request{Pack: p, RunOption: opt, VersionLabel: "2.0"})
	require.NoError(t, err)
	require.NoError(t, res.Error)
	require.Equal(t, 3, res.Successful)

	formats := map[string]int{"1.19": 13, "1.20": 15, "1.21": 34}
	archives := map[string]bool{}
	for _, c := range res.Configs {
		archives[c.Archive] = true
		assert.Equal(t, "/work/out/"+c.Name+".zip", c.Archive)

		contents := zipContents(t, e.fs, c.Archive)
		assert.Contains(t, string(contents["pack.mcmeta"]), fmt.Sprintf(`"pack_format": %d`, formats[c.Config]), c.Config)
		_, hasDirt := contents["assets/minecraft/models/block/dirt.json"]
		assert.Equal(t, c.Config != "1.20", hasDirt, c.Config)
	}
	assert.Len(t, archives, 3)
}

func TestBuildSameVersionConfigs(t *testing.T) {
	configs := []pack.Config{
		{Name: "full", MCVersions: []string{"1.20.1"}},
		{Name: "lite", MCVersions: []string{"1.20.1"}, Patches: []string{"base"}},
	}

	t.Run("separate build directories", func(t *testing.T) {
		e := newEnv(t, nil)
		res, err := e.packer.Build(context.Background(), Request{
			Pack:      stayTrue(configs...),
			RunOption: pack.RunOption{Name: "dev", Configs: pack.Selection{All: true}},
		})
		require.NoError(t, err)
		require.Equal(t, 2, res.Successful)
		assert.Equal(t, "/work/temp/full", res.Configs[0].BuildDir)
		assert.Equal(t, "/work/temp/lite", res.Configs[1].BuildDir)
		assert.True(t, filesystem.Exists(e.fs, "/work/temp/full/assets/minecraft/models/block/dirt.json"))
		assert.False(t, filesystem.Exists(e.fs, "/work/temp/lite/assets/minecraft/models/block/dirt.json"))
	})

	t.Run("colliding archives fail", func(t *testing.T) {
		e := newEnv(t, nil)
		res, err := e.packer.Build(context.Background(), Request{
			Pack:         stayTrue(configs...),
			RunOption:    buildOption,
			VersionLabel: "1.0",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Failed)
		for _, c := range res.Configs {
			assert.False(t, c.Success, c.Config)
			assert.True(t, errors.IsErrorCode(c.Error, errors.ErrOutputConflict), c.Config)
		}
		assert.False(t, filesystem.Exists(e.fs, "/work/out/Stay True v1.0 - 1.20.1.zip"))
	})

	t.Run("other configs still build", func(t *testing.T) {
		e := newEnv(t, nil)
		all := append([]pack.Config{{Name: "1.21", MCVersions: []string{"1.21"}}}, configs...)
		res, err := e.packer.Build(context.Background(), Request{
			Pack:         stayTrue(all...),
			RunOption:    buildOption,
			VersionLabel: "1.0",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Successful)
		assert.Equal(t, 2, res.Failed)
		assert.True(t, res.Configs[0].Success)
		assert.True(t, filesystem.Exists(e.fs, "/work/out/Stay True v1.0 - 1.21.zip"))
	})
}

func TestBuildRefusesOutputOverSource(t *testing.T) {
	tests := []struct {
		name       string
		nameScheme string
		outDir     string
	}{
		{name: "build dir is the source", nameScheme: "#name", outDir: "#packdir"},
		{name: "build dir inside the source", nameScheme: "#name", outDir: "#packdir/Stay True/build"},
		{name: "build dir holds the source", nameScheme: "resourcepacks", outDir: "/mc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, nil)
			p := stayTrue(pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}})
			p.NameScheme = tt.nameScheme

			_, err := e.packer.Build(context.Background(), Request{
				Pack:      p,
				RunOption: pack.RunOption{Name: "dev", OutDir: tt.outDir},
			})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

			pic, err := afero.ReadFile(e.fs, filepath.Join(packSource, "pack.png"))
			require.NoError(t, err)
			assert.Equal(t, "png", string(pic))
			assert.True(t, filesystem.Exists(e.fs, filepath.Join(packSource, "assets/minecraft/models/block/stone.json")))
		})
	}
}

func TestBuildPatchFailureDoesNotFailConfig(t *testing.T) {
	e := newEnv(t, nil)
	p := stayTrue(pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}, Patches: []string{"broken", "nope", "base"}})

	res, err := e.packer.Build(context.Background(), Request{Pack: p, RunOption: pack.RunOption{Name: "dev"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Successful)

	c := res.Configs[0]
	assert.Equal(t, DefaultVersion, res.Version)
	require.Len(t, c.PatchErrors, 2)
	assert.True(t, errors.IsErrorCode(c.PatchErrors[0], errors.ErrPatchApply))
	assert.True(t, errors.IsErrorCode(c.PatchErrors[1], errors.ErrPatchNotFound))
	assert.False(t, filesystem.Exists(filesystem.Sandbox(e.fs, c.BuildDir), "assets/minecraft/models/block/dirt.json"))
}

func TestBuildSelection(t *testing.T) {
	e := newEnv(t, nil)
	p := stayTrue(
		pack.Config{Name: "1.19", MCVersions: []string{"1.19.4"}},
		pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}},
	)

	res, err := e.packer.Build(context.Background(), Request{
		Pack:      p,
		RunOption: pack.RunOption{Name: "dev"},
		Selection: &pack.Selection{Names: []string{"1.20", "1.5"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.20"}, res.Names())

	res, err = e.packer.Build(context.Background(), Request{
		Pack:      p,
		RunOption: pack.RunOption{Name: "dev"},
		Selection: &pack.Selection{Names: []string{"nothing"}},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestBuildOutDirOverride(t *testing.T) {
	e := newEnv(t, nil)
	require.NoError(t, afero.WriteFile(e.fs, "/work/temp/keep.txt", []byte("x"), 0644))
	p := stayTrue(pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}})

	res, err := e.packer.Build(context.Background(), Request{
		Pack:      p,
		RunOption: pack.RunOption{Name: "dev", OutDir: "#packdir", Version: "DEV"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Successful)
	assert.Equal(t, "/mc/resourcepacks/Stay True vDEV - 1.20.1", res.Configs[0].BuildDir)
	assert.True(t, filesystem.Exists(e.fs, "/work/temp/keep.txt"))
	assert.True(t, filesystem.Exists(e.fs, "/mc/resourcepacks/Stay True vDEV - 1.20.1/pack.mcmeta"))
}

func TestBuildMissingPackDirectory(t *testing.T) {
	e := newEnv(t, nil)
	p := stayTrue(pack.Config{Name: "1.20"})
	p.Directory = "#packdir/Gone"

	_, err := e.packer.Build(context.Background(), Request{Pack: p, RunOption: buildOption})
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackNotFound))
}

type scriptedPrompter struct {
	choice   string
	version  string
	confirms []bool
	inputs   int
}

func (s *scriptedPrompter) Choose(_ string, options []string) (string, error) {
	if s.choice == "" {
		return options[0], nil
	}
	return s.choice, nil
}

func (s *scriptedPrompter) Input(string, string) (string, error) {
	s.inputs++
	return s.version, nil
}

func (s *scriptedPrompter) Confirm(string, bool) (bool, error) {
	if len(s.confirms) == 0 {
		return false, nil
	}
	next := s.confirms[0]
	s.confirms = s.confirms[1:]
	return next, nil
}

func TestRunReruns(t *testing.T) {
	prompter := &scriptedPrompter{choice: "1.21", version: "2.1", confirms: []bool{true}}
	e := newEnv(t, prompter)
	p := stayTrue(
		pack.Config{Name: "1.20", MCVersions: []string{"1.20.1"}},
		pack.Config{Name: "1.21", MCVersions: []string{"1.21"}},
	)
	opt := pack.RunOption{Name: "dev", Configs: pack.Selection{Interactive: true}, Rerun: true}

	results, err := e.packer.Run(context.Background(), Request{Pack: p, RunOption: opt})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, []string{"1.21"}, r.Names())
		assert.Equal(t, "2.1", r.Version)
	}
	// the version is asked once and reused on rerun
	assert.Equal(t, 1, prompter.inputs)
}

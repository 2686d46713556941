// Package drivercab packages a directory of drivers into a cabinet archive
// for attestation signing. Each driver lives in its own subdirectory with
// exactly one INF and a matching security catalog; missing or stale
// catalogs are regenerated with Inf2Cat before the cabinet is built.
package drivercab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/patrickwbarnes/authenticode-scripts/lib/atomicfile"
	"github.com/patrickwbarnes/authenticode-scripts/lib/procutil"
)

const (
	// WorkDir is reserved by makecab for its output; it is never treated
	// as a driver directory.
	WorkDir = "disk1"
	// CabName is the fixed archive name makecab produces before the
	// packager relocates it.
	CabName = "data1.cab"
	// DefName is the cabinet definition file written into the source root.
	DefName = "makecab.ddf"
)

var (
	ErrInvalidSource = errors.New("invalid source directory")
	ErrBadInf        = errors.New("catalog generation failed")
	ErrCabTool       = errors.New("cabinet creation failed")
)

// Runner invokes an external tool with the given working directory,
// returning its combined output. Tests inject fakes; the default runs the
// tool via procutil.
type Runner func(ctx context.Context, argv []string, dir string) (string, error)

func runTool(ctx context.Context, argv []string, dir string) (string, error) {
	proc := procutil.CommandContext(ctx, argv)
	proc.Proc.Dir = dir
	log.Debug().Str("cmdline", proc.FormatCmdline()).Msg("invoking tool")
	err := proc.Run()
	return proc.Output, err
}

// Packager builds one cabinet from one source directory.
type Packager struct {
	Source string
	Dest   string
	// OSSpec is the Inf2Cat /os: argument.
	OSSpec string
	// Inf2Cat is the path of inf2cat.exe; MakeCab of makecab.exe.
	Inf2Cat string
	MakeCab string
	Run     Runner
}

func (p *Packager) run(ctx context.Context, argv []string, dir string) (string, error) {
	if p.Run != nil {
		return p.Run(ctx, argv, dir)
	}
	return runTool(ctx, argv, dir)
}

// Driver is one validated driver subdirectory of the source tree.
type Driver struct {
	name       string
	path       string
	infBase    string
	hasCatalog bool
}

// Scan validates the source tree: at least one driver subdirectory, exactly
// one INF per driver, at most one catalog whose name matches the INF.
// Catalogs older than their INF are deleted so they will be regenerated.
func (p *Packager) Scan() ([]*Driver, error) {
	entries, err := os.ReadDir(p.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, err)
	}
	var drivers []*Driver
	for _, entry := range entries {
		if !entry.IsDir() || strings.EqualFold(entry.Name(), WorkDir) {
			continue
		}
		d, err := p.scanDriver(entry.Name())
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	if len(drivers) == 0 {
		return nil, fmt.Errorf("%w: %s contains no driver directories", ErrInvalidSource, p.Source)
	}
	return drivers, nil
}

func (p *Packager) scanDriver(name string) (*Driver, error) {
	dir := filepath.Join(p.Source, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, err)
	}
	var infs, cats []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".inf":
			infs = append(infs, entry.Name())
		case ".cat":
			cats = append(cats, entry.Name())
		}
	}
	if len(infs) != 1 {
		return nil, fmt.Errorf("%w: %s must contain exactly one INF file, found %d", ErrInvalidSource, dir, len(infs))
	}
	if len(cats) > 1 {
		return nil, fmt.Errorf("%w: %s contains more than one catalog file", ErrInvalidSource, dir)
	}
	d := &Driver{
		name:    name,
		path:    dir,
		infBase: strings.TrimSuffix(infs[0], filepath.Ext(infs[0])),
	}
	if len(cats) == 0 {
		return d, nil
	}
	catBase := strings.TrimSuffix(cats[0], filepath.Ext(cats[0]))
	if !strings.EqualFold(catBase, d.infBase) {
		return nil, fmt.Errorf("%w: catalog %s does not match INF %s", ErrInvalidSource, cats[0], infs[0])
	}
	stale, err := catalogStale(filepath.Join(dir, infs[0]), filepath.Join(dir, cats[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, err)
	}
	if stale {
		log.Info().Str("driver", name).Msg("removing stale catalog")
		if err := os.Remove(filepath.Join(dir, cats[0])); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSource, err)
		}
		return d, nil
	}
	d.hasCatalog = true
	return d, nil
}

func catalogStale(infPath, catPath string) (bool, error) {
	inf, err := os.Stat(infPath)
	if err != nil {
		return false, err
	}
	cat, err := os.Stat(catPath)
	if err != nil {
		return false, err
	}
	return cat.ModTime().Before(inf.ModTime()), nil
}

// EnsureCatalogs generates a catalog for every driver that lacks a current
// one.
func (p *Packager) EnsureCatalogs(ctx context.Context, drivers []*Driver) error {
	for _, d := range drivers {
		if d.hasCatalog {
			continue
		}
		log.Info().Str("driver", d.name).Msg("generating catalog")
		argv := []string{p.Inf2Cat, "/driver:" + d.path, "/os:" + p.OSSpec, "/uselocaltime"}
		output, err := p.run(ctx, argv, p.Source)
		if err != nil {
			return fmt.Errorf("%w for %s: %s\n%s", ErrBadInf, d.name, err, output)
		}
		d.hasCatalog = true
	}
	return nil
}

// WriteDefinition emits the cabinet definition for the validated drivers.
func (p *Packager) WriteDefinition(w io.Writer, drivers []*Driver) error {
	fmt.Fprintln(w, ".OPTION EXPLICIT")
	fmt.Fprintln(w, ".Set CabinetFileCountThreshold=0")
	fmt.Fprintln(w, ".Set FolderFileCountThreshold=0")
	fmt.Fprintln(w, ".Set FolderSizeThreshold=0")
	fmt.Fprintln(w, ".Set MaxCabinetSize=0")
	fmt.Fprintln(w, ".Set MaxDiskFileCount=0")
	fmt.Fprintln(w, ".Set MaxDiskSize=0")
	fmt.Fprintln(w, ".Set CompressionType=MSZIP")
	fmt.Fprintln(w, ".Set Cabinet=on")
	fmt.Fprintln(w, ".Set Compress=on")
	fmt.Fprintln(w, ".Set CabinetNameTemplate="+CabName)
	fmt.Fprintln(w, ".Set DiskDirectoryTemplate="+WorkDir)
	for _, d := range drivers {
		fmt.Fprintln(w, ".Set DestinationDir="+d.name)
		err := filepath.WalkDir(d.path, func(path string, entry os.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return err
			}
			rel, err := filepath.Rel(p.Source, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, quotePath(rel))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// quotePath wraps a definition entry in double quotes. makecab does no
// escape processing, so the path must appear verbatim between the quotes.
func quotePath(path string) string {
	return "\"" + path + "\""
}

// Pack runs the whole flow: validate, generate catalogs, build the cabinet
// and move it to the destination.
func (p *Packager) Pack(ctx context.Context) error {
	drivers, err := p.Scan()
	if err != nil {
		return err
	}
	if err := p.EnsureCatalogs(ctx, drivers); err != nil {
		return err
	}
	var def bytes.Buffer
	if err := p.WriteDefinition(&def, drivers); err != nil {
		return err
	}
	defPath := filepath.Join(p.Source, DefName)
	if err := atomicfile.WriteFile(defPath, def.Bytes()); err != nil {
		return err
	}
	output, err := p.run(ctx, []string{p.MakeCab, "/f", DefName}, p.Source)
	if err != nil {
		return fmt.Errorf("%w: %s\n%s", ErrCabTool, err, output)
	}
	if err := moveFile(filepath.Join(p.Source, WorkDir, CabName), p.Dest); err != nil {
		return fmt.Errorf("%w: %s", ErrCabTool, err)
	}
	os.RemoveAll(filepath.Join(p.Source, WorkDir))
	os.Remove(defPath)
	log.Info().Str("cabinet", p.Dest).Msg("cabinet created")
	return nil
}

func moveFile(src, dest string) error {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	// cross-device fallback
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := atomicfile.New(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Commit(); err != nil {
		return err
	}
	return os.Remove(src)
}

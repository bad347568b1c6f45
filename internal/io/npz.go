package io

import (
	"archive/zip"
	"fmt"
	goio "io"
	"os"
	"strings"

	"github.com/kshedden/gonpy"
	"gonum.org/v1/gonum/mat"
)

// GradientKey is the npz member holding a gradient basis
const GradientKey = "G"

// NpzEntry is one named array of an npz container
type NpzEntry struct {
	Key    string
	Matrix *mat.Dense
}

type nopWriteCloser struct {
	goio.Writer
}

func (nopWriteCloser) Close() error { return nil }

// SaveNpz writes entries to an uncompressed npz container, in order, the way numpy.savez does
func SaveNpz(path string, entries []NpzEntry) (err error) {
	if err := ensureParent(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[SaveNpz] failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(path)
		}
	}()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		member, err := zw.CreateHeader(&zip.FileHeader{Name: e.Key + ".npy", Method: zip.Store})
		if err != nil {
			return fmt.Errorf("[SaveNpz] failed to add %q: %w", e.Key, err)
		}

		w, err := gonpy.NewWriter(nopWriteCloser{member})
		if err != nil {
			return fmt.Errorf("[SaveNpz] failed to add %q: %w", e.Key, err)
		}
		if err := writeNpy(w, e.Matrix); err != nil {
			return fmt.Errorf("[SaveNpz] failed to write %q: %w", e.Key, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("[SaveNpz] failed to finish archive: %w", err)
	}

	return f.Close()
}

// ReadNpz reads every array of an npz container in archive order
func ReadNpz(path string) ([]NpzEntry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: [ReadNpz] %s: %v", ErrInputFormat, path, err)
	}
	defer zr.Close()

	var entries []NpzEntry
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}

		matrix, err := readMember(f)
		if err != nil {
			return nil, fmt.Errorf("[ReadNpz] %s: %w", path, err)
		}
		entries = append(entries, NpzEntry{Key: strings.TrimSuffix(f.Name, ".npy"), Matrix: matrix})
	}

	return entries, nil
}

// LoadNpz reads the array stored under key from an npz container
func LoadNpz(path string, key string) (*mat.Dense, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: [LoadNpz] %s: %v", ErrInputFormat, path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != key+".npy" {
			continue
		}

		matrix, err := readMember(f)
		if err != nil {
			return nil, fmt.Errorf("[LoadNpz] %s: %w", path, err)
		}
		return matrix, nil
	}

	return nil, fmt.Errorf("%w: [LoadNpz] no array %q in %s", ErrInputFormat, key, path)
}

func readMember(f *zip.File) (*mat.Dense, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputFormat, f.Name, err)
	}
	defer rc.Close()

	r, err := gonpy.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputFormat, f.Name, err)
	}

	matrix, err := readNpy(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	return matrix, nil
}

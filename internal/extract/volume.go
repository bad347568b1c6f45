package extract

import (
	"errors"
	"fmt"
	goio "io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/KyungWonPark/nifti"
	"github.com/klauspost/pgzip"
)

// ErrGeometry reports volumes whose headers or shapes cannot be used together
var ErrGeometry = errors.New("volume geometry error")

// Volume is a 4-D image addressed by voxel coordinates and timepoint
type Volume interface {
	Dims() [4]int
	At(x, y, z, t int) float64
}

// NIfTI-1 datatype codes
const (
	dtUnknown = 0
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
	dtUint32  = 768
)

const niftiHeaderSize = 348

// decoders undo the library's fixed per-width conversion (uint8, uint16, float32 bits, float64)
var decoders = map[int16]struct {
	bitpix int16
	decode func(raw float32) float64
}{
	dtUint8:   {8, func(raw float32) float64 { return float64(raw) }},
	dtInt8:    {8, func(raw float32) float64 { return float64(int8(uint8(raw))) }},
	dtUint16:  {16, func(raw float32) float64 { return float64(raw) }},
	dtInt16:   {16, func(raw float32) float64 { return float64(int16(uint16(raw))) }},
	dtFloat32: {32, func(raw float32) float64 { return float64(raw) }},
	dtInt32:   {32, func(raw float32) float64 { return float64(int32(math.Float32bits(raw))) }},
	dtUint32:  {32, func(raw float32) float64 { return float64(math.Float32bits(raw)) }},
	dtFloat64: {64, func(raw float32) float64 { return float64(raw) }},
}

type niftiVolume struct {
	img    *nifti.Nifti1Image
	dims   [4]int
	decode func(raw float32) float64
	slope  float64
	inter  float64
}

func (v *niftiVolume) Dims() [4]int { return v.dims }

func (v *niftiVolume) At(x, y, z, t int) float64 {
	return v.decode(v.img.GetAt(uint32(x), uint32(y), uint32(z), uint32(t)))*v.slope + v.inter
}

// ReadHeader loads and validates the header of a single-file NIfTI-1 image (.nii or .nii.gz)
func ReadHeader(path string) (nifti.Nifti1Header, error) {
	var hdr nifti.Nifti1Header

	// LoadHeader dereferences a nil reader on open failures
	if _, err := os.Stat(path); err != nil {
		return hdr, fmt.Errorf("[ReadHeader] failed to open %s: %w", path, err)
	}
	if err := guard(func() { hdr.LoadHeader(path) }); err != nil {
		return hdr, fmt.Errorf("%w: %s: %v", ErrGeometry, path, err)
	}

	switch {
	case hdr.SizeofHdr == niftiHeaderSize:
	case swap32(hdr.SizeofHdr) == niftiHeaderSize:
		return hdr, fmt.Errorf("%w: %s is big-endian, only little-endian images are supported", ErrGeometry, path)
	default:
		return hdr, fmt.Errorf("%w: %s is not a NIfTI-1 file", ErrGeometry, path)
	}

	if string(hdr.Magic[:3]) != "n+1" {
		return hdr, fmt.Errorf("%w: %s is not a single-file NIfTI-1 image (magic %q)", ErrGeometry, path, hdr.Magic[:3])
	}

	ndim := int(hdr.Dim[0])
	if ndim < 1 || ndim > 7 {
		return hdr, fmt.Errorf("%w: %s declares %d dimensions", ErrGeometry, path, ndim)
	}
	for i := 1; i <= ndim; i++ {
		if hdr.Dim[i] < 1 {
			return hdr, fmt.Errorf("%w: %s has extent %d on axis %d", ErrGeometry, path, hdr.Dim[i], i-1)
		}
	}
	if ndim > 4 {
		for i := 5; i <= ndim; i++ {
			if hdr.Dim[i] != 1 {
				return hdr, fmt.Errorf("%w: %s has %d dimensions, want at most 4", ErrGeometry, path, ndim)
			}
		}
	}

	if _, err := decoderFor(hdr); err != nil {
		return hdr, fmt.Errorf("%w: %s: %v", ErrGeometry, path, err)
	}

	if hdr.VoxOffset < niftiHeaderSize {
		return hdr, fmt.Errorf("%w: %s has vox_offset %g inside the header", ErrGeometry, path, hdr.VoxOffset)
	}

	return hdr, nil
}

// decoderFor accepts the datatype/bitpix pairs the library can read; DT_UNKNOWN follows bitpix
// the way images written by the library itself are read back
func decoderFor(hdr nifti.Nifti1Header) (func(float32) float64, error) {
	if hdr.Datatype == dtUnknown {
		switch hdr.Bitpix {
		case 8:
			return decoders[dtUint8].decode, nil
		case 16:
			return decoders[dtUint16].decode, nil
		case 32:
			return decoders[dtFloat32].decode, nil
		case 64:
			return decoders[dtFloat64].decode, nil
		}
		return nil, fmt.Errorf("unsupported bitpix %d", hdr.Bitpix)
	}

	d, ok := decoders[hdr.Datatype]
	if !ok {
		return nil, fmt.Errorf("unsupported datatype %d", hdr.Datatype)
	}
	if d.bitpix != hdr.Bitpix {
		return nil, fmt.Errorf("datatype %d needs bitpix %d, header says %d", hdr.Datatype, d.bitpix, hdr.Bitpix)
	}

	return d.decode, nil
}

// OpenVolume loads a single-file NIfTI-1 image
func OpenVolume(path string) (Volume, error) {
	hdr, err := ReadHeader(path)
	if err != nil {
		return nil, err
	}
	decode, _ := decoderFor(hdr)

	nvox := int64(1)
	for i := 1; i <= int(hdr.Dim[0]); i++ {
		nvox *= int64(hdr.Dim[i])
	}
	want := int64(hdr.VoxOffset) + nvox*int64(hdr.Bitpix)/8

	have, err := dataSize(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGeometry, path, err)
	}
	if have < want {
		return nil, fmt.Errorf("%w: %s is truncated: %d bytes, header needs %d", ErrGeometry, path, have, want)
	}

	var img nifti.Nifti1Image
	if err := guard(func() { img.LoadImage(path, true) }); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGeometry, path, err)
	}

	v := &niftiVolume{img: &img, decode: decode, slope: 1}
	if s := float64(hdr.SclSlope); s != 0 && !math.IsNaN(s) && !math.IsInf(s, 0) {
		v.slope, v.inter = s, float64(hdr.SclInter)
	}

	v.dims = img.GetDims()
	for i := range v.dims {
		if i >= int(hdr.Dim[0]) {
			v.dims[i] = 1
		}
	}

	return v, nil
}

// dataSize returns the uncompressed size of the image file
func dataSize(path string) (int64, error) {
	if !strings.EqualFold(filepath.Ext(path), ".gz") {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer gz.Close()

	return goio.Copy(goio.Discard, gz)
}

func swap32(v int32) int32 {
	u := uint32(v)
	return int32(u>>24 | (u>>8)&0xff00 | (u<<8)&0xff0000 | u<<24)
}

// guard turns a panic inside the NIfTI library into an error
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("nifti: %v", r)
		}
	}()
	fn()

	return nil
}

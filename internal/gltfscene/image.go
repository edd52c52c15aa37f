package gltfscene

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"github.com/qmuntal/gltf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/sdfexport/internal/host"
)

// Image is a glTF image, either embedded (data URI or buffer view) or an
// external file next to the document.
type Image struct {
	scene *Scene
	index int
	img   *gltf.Image
	name  string
	file  string
}

func newImage(s *Scene, idx int, img *gltf.Image) *Image {
	im := &Image{scene: s, index: idx, img: img}
	if !im.Packed() && img.URI != "" {
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		if filepath.IsAbs(uri) {
			im.file = uri
		} else {
			im.file = filepath.Join(s.dir, filepath.FromSlash(uri))
		}
	}
	im.name = im.resolveName()
	return im
}

// resolveName prefers the declared name, then the file name, and finally
// names embedded images after the format their bytes carry.
func (im *Image) resolveName() string {
	name := im.img.Name
	if name == "" && im.file != "" {
		name = filepath.Base(im.file)
	}
	if name == "" {
		name = fmt.Sprintf("image_%d", im.index)
	}
	if path.Ext(name) != "" {
		return name
	}
	if ext := extForMime(im.img.MimeType); ext != "" {
		return name + ext
	}
	if data, err := im.data(); err == nil {
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			return name + "." + kind.Extension
		}
	}
	return name
}

func extForMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	return ""
}

func (im *Image) Key() string      { return fmt.Sprintf("image:%d", im.index) }
func (im *Image) Name() string     { return im.name }
func (im *Image) FilePath() string { return im.file }

// Packed reports whether the pixels live inside the document.
func (im *Image) Packed() bool {
	return im.img.BufferView != nil || im.img.IsEmbeddedResource()
}

// HasPixels reports whether the image bytes can be read.
func (im *Image) HasPixels() bool {
	if im.Packed() {
		return true
	}
	fi, err := os.Stat(im.file)
	return err == nil && fi.Mode().IsRegular()
}

// defaultPath is what a material node references before the exporter
// relocates the image.
func (im *Image) defaultPath() string {
	if im.file != "" {
		return im.file
	}
	return im.name
}

// data returns the encoded image bytes.
func (im *Image) data() ([]byte, error) {
	if bv := im.img.BufferView; bv != nil {
		doc := im.scene.doc
		if *bv >= len(doc.BufferViews) {
			return nil, fmt.Errorf("image %d: buffer view %d out of range", im.index, *bv)
		}
		view := doc.BufferViews[*bv]
		if view.Buffer >= len(doc.Buffers) {
			return nil, fmt.Errorf("image %d: buffer %d out of range", im.index, view.Buffer)
		}
		buf := doc.Buffers[view.Buffer].Data
		end := view.ByteOffset + view.ByteLength
		if end > len(buf) {
			return nil, fmt.Errorf("image %d: buffer view exceeds buffer", im.index)
		}
		return buf[view.ByteOffset:end], nil
	}
	if im.img.IsEmbeddedResource() {
		return im.img.MarshalData()
	}
	if im.file == "" {
		return nil, fmt.Errorf("image %d has no data", im.index)
	}
	return os.ReadFile(im.file)
}

// decodeImage picks the decoder from the content, falling back to the name
// for TGA which has no signature.
func decodeImage(data []byte, name string) (image.Image, error) {
	kind, _ := filetype.Match(data)
	r := bytes.NewReader(data)
	switch kind.MIME.Value {
	case "image/png":
		return png.Decode(r)
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	case "image/bmp":
		return bmp.Decode(r)
	case "image/tiff":
		return tiff.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	}
	if strings.EqualFold(path.Ext(name), ".tga") {
		return tga.Decode(r)
	}
	return nil, fmt.Errorf("unrecognized image format for %q", name)
}

// SaveImage implements host.Scene by re-encoding the image.
func (s *Scene) SaveImage(img host.Image, format host.ImageFormat, dest string) error {
	im, ok := img.(*Image)
	if !ok || im.scene != s {
		return fmt.Errorf("save image: %w", errForeignObject)
	}
	data, err := im.data()
	if err != nil {
		return err
	}
	decoded, err := decodeImage(data, im.name)
	if err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	switch format {
	case host.ImageJPEG:
		err = jpeg.Encode(f, decoded, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, decoded)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", format.Ext(), err)
	}
	return f.Close()
}

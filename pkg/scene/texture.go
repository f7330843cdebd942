package scene

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

var lastTextureID atomic.Uint64

// Texture is a reference to an image that may still be loading.
//
// The renderer polls Version each frame and re-uploads when it changes.
// Loading happens off the render loop; nothing is pushed to the renderer
// when it completes.
type Texture struct {
	Repeat bool // Wrap coordinates outside [0,1] instead of clamping
	Smooth bool // Bilinear filtering instead of nearest

	id uint64

	mu        sync.Mutex
	img       image.Image
	version   uint64
	err       error
	disposed  bool
	onDispose []func(*Texture)
}

// NewTexture returns a texture holding img. A nil img gives a texture that
// is not loaded yet.
func NewTexture(img image.Image) *Texture {
	t := &Texture{id: lastTextureID.Add(1), Repeat: true}
	if img != nil {
		t.SetImage(img)
	}
	return t
}

// LoadTexture starts decoding the image at path in the background and
// returns immediately. The texture reports Loaded once decoding succeeds;
// failures are available from Err and leave the texture unloaded.
func LoadTexture(path string) *Texture {
	t := NewTexture(nil)
	go func() {
		img, err := decodeFile(path)
		if err != nil {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
			return
		}
		t.SetImage(img)
	}()
	return t
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return img, nil
}

// ID returns the stable identity of t.
func (t *Texture) ID() uint64 {
	return t.id
}

// SetImage replaces the image and bumps the version.
func (t *Texture) SetImage(img image.Image) {
	t.mu.Lock()
	t.img = img
	t.version++
	t.mu.Unlock()
}

// Image returns the current image and its version.
func (t *Texture) Image() (image.Image, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img, t.version
}

// Version returns the image generation; zero means never loaded.
func (t *Texture) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Loaded reports whether an image is available.
func (t *Texture) Loaded() bool {
	return t.Version() > 0
}

// Err returns the background load error, if any.
func (t *Texture) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// NeedsUpdate bumps the version after the image was modified in place.
func (t *Texture) NeedsUpdate() {
	t.mu.Lock()
	t.version++
	t.mu.Unlock()
}

// OnDispose registers fn to run when t is disposed.
func (t *Texture) OnDispose(fn func(*Texture)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDispose = append(t.onDispose, fn)
}

// Dispose runs the dispose hooks once. The image stays readable.
func (t *Texture) Dispose() {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.disposed = true
	hooks := t.onDispose
	t.onDispose = nil
	t.mu.Unlock()
	for _, fn := range hooks {
		fn(t)
	}
}

// Disposed reports whether Dispose was called.
func (t *Texture) Disposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

package render

import (
	"fmt"
	"image"

	"github.com/bmharper/cimg/v2"
	"github.com/chewxy/math32"
	"github.com/cyclopcam/logs"
	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/googleinterns/instant-motion-tracking/pkg/gen"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
)

const overlayJPEGQuality = 85

type style struct {
	r, g, b float64
}

var styles = map[sticker.Render]style{
	sticker.RenderSprite: {0.22, 0.76, 0.77},
	sticker.RenderRobot:  {0.94, 0.56, 0.18},
	sticker.RenderDino:   {0.45, 0.78, 0.33},
}

// Overlay is a software renderer. It projects each posed quad back onto the
// image plane and draws it as a labeled rectangle, with the sticker texture
// if one was loaded. Output frames are JPEG compressed.
type Overlay struct {
	log        logs.Log
	intrinsics pose.Intrinsics
	width      int
	height     int
	sprites    map[sticker.Render]image.Image
	animations map[sticker.Render]string
}

func NewOverlay(log logs.Log, intrinsics pose.Intrinsics, width, height int) (*Overlay, error) {
	if _, err := pose.NewIntrinsics(intrinsics.VerticalFOV, intrinsics.Aspect); err != nil {
		return nil, fmt.Errorf("Failed to create overlay renderer: %w", err)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Failed to create overlay renderer: invalid canvas size %vx%v", width, height)
	}
	return &Overlay{
		log:        log,
		intrinsics: intrinsics,
		width:      width,
		height:     height,
		sprites:    map[sticker.Render]image.Image{},
		animations: map[sticker.Render]string{},
	}, nil
}

// LoadAnimation remembers the asset path. The overlay has no animation
// playback, so the asset's stand-in quad is drawn instead.
func (o *Overlay) LoadAnimation(r sticker.Render, path string) error {
	o.animations[r] = path
	o.log.Infof("Overlay renderer: animation %v registered for %v (drawn as quad)", path, r)
	return nil
}

func (o *Overlay) LoadTexture(r sticker.Render, path string) error {
	im, err := gg.LoadImage(path)
	if err != nil {
		return fmt.Errorf("Failed to load texture %v for %v: %w", path, r, err)
	}
	o.sprites[r] = im
	return nil
}

// TextureAspect returns width/height of the texture loaded for r, or 0 if
// none is loaded. Callers feed this to the pose composer so the rendered
// quad keeps the image's proportions.
func (o *Overlay) TextureAspect(r sticker.Render) float32 {
	im := o.sprites[r]
	if im == nil {
		return 0
	}
	b := im.Bounds()
	if b.Dy() == 0 {
		return 0
	}
	return float32(b.Dx()) / float32(b.Dy())
}

func (o *Overlay) Submit(pts int64, batches []pose.Batch) (*Frame, error) {
	dc := gg.NewContext(o.width, o.height)
	dc.SetRGB(0.07, 0.07, 0.09)
	dc.Clear()
	for _, b := range batches {
		for _, p := range b.Posed {
			o.draw(dc, b.Render, p)
		}
	}
	jpg, err := o.encode(dc)
	if err != nil {
		return nil, fmt.Errorf("Failed to compress overlay frame %v: %w", pts, err)
	}
	return &Frame{PTS: pts, Width: o.width, Height: o.height, JPEG: jpg}, nil
}

// project maps a camera-space point to pixels. Points at or behind the
// camera plane are not drawable.
func (o *Overlay) project(p mgl32.Vec3) (float64, float64, bool) {
	if p.Z() >= 0 {
		return 0, 0, false
	}
	halfH := math32.Abs(p.Z()) * math32.Tan(o.intrinsics.VerticalFOV/2)
	halfW := halfH * o.intrinsics.Aspect
	x := float64((1-p.X()/halfW)/2) * float64(o.width)
	y := float64((1-p.Y()/halfH)/2) * float64(o.height)
	return x, y, true
}

func (o *Overlay) draw(dc *gg.Context, r sticker.Render, p pose.Posed) {
	t := p.Matrix.Col(3).Vec3()
	cx, cy, ok := o.project(t)
	if !ok {
		o.log.Warnf("Sticker %v is behind the camera, not drawing", p.StickerID)
		return
	}
	halfH := math32.Abs(t.Z()) * math32.Tan(o.intrinsics.VerticalFOV/2)
	halfW := halfH * o.intrinsics.Aspect
	sx := p.Matrix.Col(0).Vec3().Len()
	sy := p.Matrix.Col(1).Vec3().Len()
	wpx := float64(sx/(2*halfW)) * float64(o.width)
	hpx := float64(sy/(2*halfH)) * float64(o.height)
	if wpx < 1 || hpx < 1 {
		return
	}

	if im := o.sprites[r]; im != nil {
		b := im.Bounds()
		dc.Push()
		dc.Translate(cx-wpx/2, cy-hpx/2)
		dc.Scale(wpx/float64(b.Dx()), hpx/float64(b.Dy()))
		dc.DrawImage(im, 0, 0)
		dc.Pop()
	} else {
		st := styles[r]
		corner := gen.Min(wpx, hpx) * 0.15
		dc.SetRGBA(st.r, st.g, st.b, 0.35)
		dc.DrawRoundedRectangle(cx-wpx/2, cy-hpx/2, wpx, hpx, corner)
		dc.Fill()
		dc.SetRGBA(st.r, st.g, st.b, 1)
		dc.SetLineWidth(2)
		dc.DrawRoundedRectangle(cx-wpx/2, cy-hpx/2, wpx, hpx, corner)
		dc.Stroke()
	}

	// Local +X axis projected to screen, so rotation is visible.
	axis := p.Matrix.Col(0).Vec3()
	if l := axis.Len(); l > 0 {
		tip := t.Add(axis.Mul(0.5 / l * sx))
		if tx, ty, ok := o.project(tip); ok {
			dc.SetRGBA(1, 1, 1, 0.8)
			dc.SetLineWidth(1.5)
			dc.DrawLine(cx, cy, tx, ty)
			dc.Stroke()
		}
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(fmt.Sprintf("%v %v", r, p.StickerID), cx, cy-hpx/2-4, 0.5, 0)
}

func (o *Overlay) encode(dc *gg.Context) ([]byte, error) {
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("Unexpected canvas image type %T", dc.Image())
	}
	rgb := cimg.NewImage(o.width, o.height, cimg.PixelFormatRGB)
	for y := 0; y < o.height; y++ {
		src := img.Pix[y*img.Stride:]
		dst := rgb.Pixels[y*rgb.Stride:]
		for x := 0; x < o.width; x++ {
			dst[x*3] = src[x*4]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return cimg.Compress(rgb, cimg.MakeCompressParams(cimg.Sampling420, overlayJPEGQuality, 0))
}

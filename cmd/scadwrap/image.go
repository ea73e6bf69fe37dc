package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/options"
)

var imageCmd = &cobra.Command{
	Use:   "image <model.scad>",
	Short: "Render a PNG image of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := parameterInput(cmd)
		if err != nil {
			return err
		}
		img, err := imageOptions(cmd, appConfig.OpenSCAD.Image)
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		client, err := rt.Client(args[0])
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		res, err := client.Image(ctx, in, img)
		if err != nil {
			return err
		}
		return printSummary(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(imageCmd)
	addParameterFlags(imageCmd)
	addImageFlags(imageCmd)
}

func addImageFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("imgsize", "", "Image size as WIDTHxHEIGHT")
	f.String("camera", "", "Camera as tx,ty,tz,rx,ry,rz,dist or ex,ey,ez,cx,cy,cz")
	f.Bool("autocenter", false, "Center the model")
	f.Bool("viewall", false, "Fit the whole model in view")
	f.String("view", "", "View options: axes, crosshairs, edges, scales, wireframe")
	f.String("projection", "", "Projection: o (ortho) or p (perspective)")
	f.String("colorscheme", "", "Color scheme")
	f.Bool("render", false, "Full render instead of preview")
}

// imageOptions applies the image flags that were set on top of base.
func imageOptions(cmd *cobra.Command, base options.ImageOptions) (options.ImageOptions, error) {
	f := cmd.Flags()
	img := base
	if f.Changed("imgsize") {
		s, _ := f.GetString("imgsize")
		size, err := parseSize(s)
		if err != nil {
			return img, err
		}
		img.Size = size
	}
	if f.Changed("camera") {
		s, _ := f.GetString("camera")
		camera, err := parseCamera(s)
		if err != nil {
			return img, err
		}
		img.Camera = camera
	}
	if f.Changed("autocenter") {
		img.Autocenter, _ = f.GetBool("autocenter")
	}
	if f.Changed("viewall") {
		img.ViewAll, _ = f.GetBool("viewall")
	}
	if f.Changed("view") {
		img.View, _ = f.GetString("view")
	}
	if f.Changed("projection") {
		img.Projection, _ = f.GetString("projection")
	}
	if f.Changed("colorscheme") {
		img.ColorScheme, _ = f.GetString("colorscheme")
	}
	if f.Changed("render") {
		img.Render, _ = f.GetBool("render")
	}
	return img, img.Validate()
}

func parseSize(s string) (*options.ImageSize, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return nil, fmt.Errorf("%w: image size %q is not WIDTHxHEIGHT", domain.ErrInvalidInput, s)
	}
	width, err1 := strconv.Atoi(strings.TrimSpace(w))
	height, err2 := strconv.Atoi(strings.TrimSpace(h))
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: image size %q is not WIDTHxHEIGHT", domain.ErrInvalidInput, s)
	}
	return &options.ImageSize{Width: width, Height: height}, nil
}

// parseCamera accepts the seven (position) or six (eye) comma separated values of --camera.
func parseCamera(s string) (options.Camera, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: camera value %q is not a number", domain.ErrInvalidInput, p)
		}
		values[i] = v
	}
	vec := func(i int) options.Vec3 {
		return options.Vec3{X: values[i], Y: values[i+1], Z: values[i+2]}
	}
	switch len(values) {
	case 7:
		return options.CameraPosition{Translate: vec(0), Rotate: vec(3), Dist: values[6]}, nil
	case 6:
		return options.CameraEye{Eye: vec(0), Center: vec(3)}, nil
	default:
		return nil, fmt.Errorf("%w: camera needs 6 or 7 values, got %d", domain.ErrInvalidInput, len(values))
	}
}

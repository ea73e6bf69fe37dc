package main

import (
	"github.com/spf13/cobra"

	"github.com/yannickbattail/scadwrap/internal/cli"
	"github.com/yannickbattail/scadwrap/pkg/domain"
)

var animateCmd = &cobra.Command{
	Use:   "animate <model.scad>",
	Short: "Render the frames of an animation, optionally stitched into a WebP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := parameterInput(cmd)
		if err != nil {
			return err
		}
		anim := appConfig.OpenSCAD.Animation
		if anim.Image, err = imageOptions(cmd, anim.Image); err != nil {
			return err
		}
		if cmd.Flags().Changed("frames") {
			anim.Frames, _ = cmd.Flags().GetInt("frames")
		}
		if cmd.Flags().Changed("delay") {
			anim.DelayMs, _ = cmd.Flags().GetInt("delay")
		}
		shards, _ := cmd.Flags().GetInt("shards")
		stitch, _ := cmd.Flags().GetBool("stitch")

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

		var res *domain.SummaryResult
		if shards > 1 {
			results, err := client.ShardedAnimation(ctx, in, anim, shards)
			if err != nil {
				return err
			}
			res = results[0]
		} else {
			if res, err = client.Animation(ctx, in, anim); err != nil {
				return err
			}
		}

		if stitch {
			if res, err = rt.Stitcher.Stitch(ctx, res, anim.DelayMs); err != nil {
				return err
			}
		}
		return printSummary(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(animateCmd)
	addParameterFlags(animateCmd)
	addImageFlags(animateCmd)
	animateCmd.Flags().Int("frames", 0, "Number of frames (default from configuration)")
	animateCmd.Flags().Int("delay", 0, "Delay between frames in milliseconds when stitching")
	animateCmd.Flags().Int("shards", 1, "Render the frames with this many concurrent processes")
	animateCmd.Flags().Bool("stitch", false, "Stitch the frames into a WebP animation with img2webp")
}

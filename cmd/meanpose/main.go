// Package main is the meanpose command, which prints the weighted mean of a set of poses.
package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/estimator/logging"
	"go.viam.com/estimator/spatialmath"
)

const (
	// Flags.
	flagDebug        = "debug"
	flagFile         = "file"
	flagTopic        = "topic"
	flagMaxDeviation = "max-deviation"

	// A rotation mean over samples further apart than this, in radians, is unreliable.
	defaultMaxDeviation = 0.35
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the app and returns the process exit code. Only the mean pose is written to out;
// logs, including a failed run's error, go to errOut.
func run(args []string, out, errOut io.Writer) int {
	logger := logging.NewBlankLogger("meanpose")
	logger.AddAppender(logging.NewWriterAppender(errOut))
	logger.SetLevel(logging.INFO)
	logging.ReplaceGlobal(logger)

	if err := newApp(out, errOut).Run(args); err != nil {
		logging.Global().Error(err)
		return 1
	}
	return 0
}

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "meanpose",
		Usage:           "compute the weighted mean of a set of poses",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging, including every sample",
			},
			&cli.Float64Flag{
				Name:  flagMaxDeviation,
				Value: defaultMaxDeviation,
				Usage: "warn when a sample's rotation is further than this many radians from the mean",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "bag",
				Usage:     "average the odometry poses of a rosbag topic, equally weighted",
				UsageText: "meanpose bag --file <path.bag> --topic <topic>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagFile,
						Required: true,
						Usage:    "rosbag `FILE` to read",
					},
					&cli.StringFlag{
						Name:     flagTopic,
						Required: true,
						Usage:    "nav_msgs/Odometry topic to average",
					},
				},
				Action: BagAction,
			},
			{
				Name:      "samples",
				Usage:     "average the weighted poses listed in a JSON file",
				UsageText: "meanpose samples --file <samples.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagFile,
						Required: true,
						Usage:    "JSON `FILE` holding an array of weighted poses",
					},
				},
				Action: SamplesAction,
			},
		},
	}
}

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("meanpose")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(logging.INFO)
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	return logger
}

// printMean computes the mean of samples, warns if they are too spread out for the rotation
// mean to be trusted, and writes the mean to the app's writer.
func printMean(c *cli.Context, logger logging.Logger, samples []spatialmath.WeightedPose) error {
	mean, err := spatialmath.MeanPose(logger, samples)
	if err != nil {
		return err
	}

	maxDeviation := c.Float64(flagMaxDeviation)
	if deviation := spatialmath.MaxAngularDeviation(mean, samples); deviation > maxDeviation {
		logger.Warnw("samples are far apart, the mean rotation is a poor approximation",
			"max_deviation", deviation, "threshold", maxDeviation)
	}
	if !mean.IsValid() {
		return errors.New("mean orientation is degenerate, check for quaternions of opposite sign")
	}

	_, err = io.WriteString(c.App.Writer, mean.String()+"\n")
	return err
}

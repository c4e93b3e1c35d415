package main

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/estimator/ros"
	"go.viam.com/estimator/spatialmath"
)

// BagAction averages every odometry pose on a rosbag topic.
func BagAction(c *cli.Context) error {
	logger := newLogger(c)
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()

	rb, err := ros.ReadBag(c.String(flagFile))
	if err != nil {
		return err
	}
	msgs, err := ros.OdometryMessagesForTopic(rb, c.String(flagTopic))
	if err != nil {
		return err
	}
	if len(msgs) > 0 {
		logger.Infow("read odometry", "topic", c.String(flagTopic), "messages", len(msgs),
			"first", msgs[0].Timestamp().UTC(), "last", msgs[len(msgs)-1].Timestamp().UTC())
	}

	samples := make([]spatialmath.WeightedPose, 0, len(msgs))
	for i := range msgs {
		samples = append(samples, spatialmath.WeightedPose{Weight: 1, Pose: spatialmath.NewPoseFromOdometry(&msgs[i])})
	}
	return printMean(c, logger, samples)
}

// SamplesAction averages the weighted poses of a JSON samples file.
func SamplesAction(c *cli.Context) error {
	logger := newLogger(c)
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()

	samples, err := readSamples(c.String(flagFile))
	if err != nil {
		return err
	}
	logger.Infow("read samples", "file", c.String(flagFile), "samples", len(samples))
	return printMean(c, logger, samples)
}

// sampleJSON is one entry of a samples file.
type sampleJSON struct {
	Weight      float64 `json:"weight"`
	Translation struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"translation"`
	Orientation struct {
		W float64 `json:"w"`
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"orientation"`
	TimeOffset float64 `json:"time_offset"`
}

func readSamples(path string) ([]spatialmath.WeightedPose, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read samples file %q", path)
	}
	return parseSamples(data)
}

func parseSamples(data []byte) ([]spatialmath.WeightedPose, error) {
	var raw []sampleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "samples must be a JSON array of weighted poses")
	}

	samples := make([]spatialmath.WeightedPose, 0, len(raw))
	for i, s := range raw {
		q := quat.Number{Real: s.Orientation.W, Imag: s.Orientation.X, Jmag: s.Orientation.Y, Kmag: s.Orientation.Z}
		if quat.Abs(q) == 0 {
			return nil, errors.Errorf("sample %d has a zero orientation quaternion", i)
		}
		t := r3.Vector{X: s.Translation.X, Y: s.Translation.Y, Z: s.Translation.Z}
		samples = append(samples, spatialmath.WeightedPose{
			Weight: s.Weight,
			Pose:   spatialmath.NewPoseFromQuat(q, t, s.TimeOffset),
		})
	}
	return samples, nil
}

// Package ros implements functionality that bridges the gap between the estimator and ROS.
package ros

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadBag reads the contents of a rosbag into a gobag data structure.
func ReadBag(filename string) (*rosbag.RosBag, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input file")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	rb := rosbag.NewRosBag()

	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "unable to create ros bag, error")
	}

	return rb, nil
}

// WriteTopicsJSON parses the messages of a rosbag into JSON, filtered by time and topic.
// A zero startTime or endTime disables the time filter; an empty topicsFilter keeps every topic.
func WriteTopicsJSON(rb *rosbag.RosBag, startTime, endTime int64, topicsFilter []string) error {
	timeFilterFunc := func(timestamp int64) bool {
		return timestamp >= startTime && timestamp <= endTime
	}
	if startTime == 0 || endTime == 0 {
		timeFilterFunc = func(int64) bool { return true }
	}

	topicFilterFunc := func(string) bool { return true }
	if len(topicsFilter) > 0 {
		topicsFilterMap := make(map[string]bool, len(topicsFilter))
		for _, topic := range topicsFilter {
			topicsFilterMap[topic] = true
		}
		topicFilterFunc = func(topic string) bool {
			return topicsFilterMap[topic]
		}
	}

	if err := rb.ParseTopicsToJSON("", timeFilterFunc, topicFilterFunc, false); err != nil {
		return errors.Wrapf(err, "error while parsing bag to JSON")
	}

	return nil
}

// OdometryMessagesForTopic returns every nav_msgs/Odometry message published on topic, in bag order.
func OdometryMessagesForTopic(rb *rosbag.RosBag, topic string) ([]OdometryMessage, error) {
	if err := WriteTopicsJSON(rb, 0, 0, []string{topic}); err != nil {
		return nil, err
	}

	msgs, ok := rb.TopicsAsJSON[TopicKey(topic)]
	if !ok {
		return nil, errors.Errorf("no messages for topic %s", topic)
	}
	return DecodeOdometryMessages(msgs)
}

// TopicKey returns the key the rosbag parser files a topic's JSON under: the leading slash is
// dropped, the remaining slashes become underscores and the result is lowercased.
func TopicKey(topic string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(topic, "/"), "/", "_"))
}

// LineReader is implemented by the buffers holding newline delimited JSON messages.
type LineReader interface {
	ReadBytes(delim byte) ([]byte, error)
}

// DecodeOdometryMessages decodes newline delimited JSON odometry messages until EOF.
func DecodeOdometryMessages(r LineReader) ([]OdometryMessage, error) {
	var all []OdometryMessage
	for {
		data, err := r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if len(bytes.TrimSpace(data)) > 0 {
			var message OdometryMessage
			if jsonErr := json.Unmarshal(data, &message); jsonErr != nil {
				return nil, errors.Wrapf(jsonErr, "failed to decode odometry message %d", len(all))
			}
			all = append(all, message)
		}
		if err != nil {
			break
		}
	}
	return all, nil
}

package ros

import "time"

// Stamp is a ROS time, seconds and nanoseconds since the epoch.
type Stamp struct {
	Secs  int
	Nsecs int
}

// Time converts the stamp to a time.Time.
func (s Stamp) Time() time.Time {
	return time.Unix(int64(s.Secs), int64(s.Nsecs))
}

// Header is the std_msgs/Header carried by stamped messages.
type Header struct {
	Seq     int
	Stamp   Stamp
	FrameID string `json:"frame_id"`
}

// Point is a geometry_msgs/Point.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Quaternion is a geometry_msgs/Quaternion.
type Quaternion struct {
	X float64
	Y float64
	Z float64
	W float64
}

// Vector3 is a geometry_msgs/Vector3.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

// OdometryMessage is a nav_msgs/Odometry message as produced by the rosbag JSON parser.
type OdometryMessage struct {
	Meta Stamp
	Data struct {
		Header       Header
		ChildFrameID string `json:"child_frame_id"`
		Pose         struct {
			Pose struct {
				Position    Point
				Orientation Quaternion
			}
			Covariance [36]float64
		}
		Twist struct {
			Twist struct {
				Linear  Vector3
				Angular Vector3
			}
			Covariance [36]float64
		}
	}
}

// Position returns the position of the odometry pose.
func (m *OdometryMessage) Position() Point {
	return m.Data.Pose.Pose.Position
}

// Orientation returns the orientation of the odometry pose.
func (m *OdometryMessage) Orientation() Quaternion {
	return m.Data.Pose.Pose.Orientation
}

// Timestamp returns the header stamp if set, otherwise the bag record time.
func (m *OdometryMessage) Timestamp() time.Time {
	if m.Data.Header.Stamp != (Stamp{}) {
		return m.Data.Header.Stamp.Time()
	}
	return m.Meta.Time()
}

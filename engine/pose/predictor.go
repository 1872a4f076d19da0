package pose

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/session"
	"github.com/go-gl/mathgl/mgl32"
)

// Tracked is the head and hand state predicted for one display time.
type Tracked struct {
	Head  hmd.PoseState
	Hands [hmd.HandCount]hmd.PoseState
}

// Prediction is everything the frame loop needs from tracking for one frame.
type Prediction struct {
	FrameIndex  int64
	DisplayTime float64
	// SampleTime is when the tracking sample was taken. Both eyes share it.
	SampleTime float64

	Head       hmd.Pose
	Hands      [hmd.HandCount]hmd.Pose
	HandStatus [hmd.HandCount]hmd.StatusFlags
	Eyes       [hmd.EyeCount]hmd.Pose
}

// EyeCenter returns the point halfway between the two eye positions.
func (p Prediction) EyeCenter() mgl32.Vec3 {
	return common.Midpoint(p.Eyes[hmd.EyeLeft].Position, p.Eyes[hmd.EyeRight].Position)
}

// View returns the view matrix of eye, the inverse of its world pose.
func (p Prediction) View(eye hmd.Eye) mgl32.Mat4 {
	return p.Eyes[eye].Matrix().Inv()
}

// predictor implements the Predictor interface.
type predictor struct {
	sess        session.Session
	hmdToEye    [hmd.EyeCount]hmd.Pose
	controllers hmd.ControllerType
}

// Predictor turns a frame index into head, hand and eye poses at the time that frame will be displayed.
type Predictor interface {
	// PredictDisplayTime returns when the frame will reach the display.
	//
	// Parameters:
	//   - frameIndex: the frame index
	//
	// Returns:
	//   - float64: the absolute display time in runtime seconds
	PredictDisplayTime(frameIndex int64) float64

	// PredictedPoses queries head and hand poses at displayTime. Results are never cached.
	//
	// Parameters:
	//   - displayTime: the absolute time to predict for
	//
	// Returns:
	//   - Tracked: the predicted poses with their status flags
	PredictedPoses(displayTime float64) Tracked

	// Predict runs the full per-frame prediction: display time, poses, sample time and eye poses.
	//
	// Parameters:
	//   - frameIndex: the frame index
	//
	// Returns:
	//   - Prediction: the frame prediction
	Predict(frameIndex int64) Prediction

	// Input returns the most recently polled controller state. It is not predicted.
	//
	// Returns:
	//   - hmd.InputState: buttons and trigger values
	//   - error: an error if the controllers could not be read
	Input() (hmd.InputState, error)

	// Recenter makes the current head yaw and position the tracking origin.
	//
	// Returns:
	//   - error: an error if the runtime refused
	Recenter() error
}

var _ Predictor = &predictor{}

// NewPredictor creates a predictor bound to sess. The eye offsets are read from the session descriptor once.
//
// Parameters:
//   - sess: the open session
//   - options: functional options for the predictor
//
// Returns:
//   - Predictor: the predictor
func NewPredictor(sess session.Session, options ...PredictorBuilderOption) Predictor {
	p := &predictor{
		sess:        sess,
		hmdToEye:    sess.Describe().HmdToEyePoses(),
		controllers: hmd.ControllerTypeTouch,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *predictor) PredictDisplayTime(frameIndex int64) float64 {
	return p.sess.Device().PredictedDisplayTime(frameIndex)
}

func (p *predictor) PredictedPoses(displayTime float64) Tracked {
	ts := p.sess.Device().TrackingState(displayTime, true)
	return Tracked{Head: ts.HeadPose, Hands: ts.HandPoses}
}

func (p *predictor) Predict(frameIndex int64) Prediction {
	displayTime := p.PredictDisplayTime(frameIndex)
	tracked := p.PredictedPoses(displayTime)

	pred := Prediction{
		FrameIndex:  frameIndex,
		DisplayTime: displayTime,
		SampleTime:  p.sess.Device().TimeInSeconds(),
		Head:        tracked.Head.Pose,
	}
	for h := range hmd.HandCount {
		pred.Hands[h] = tracked.Hands[h].Pose
		pred.HandStatus[h] = tracked.Hands[h].Status
	}
	for _, eye := range hmd.Eyes {
		pred.Eyes[eye] = pred.Head.Transform(p.hmdToEye[eye])
	}
	return pred
}

func (p *predictor) Input() (hmd.InputState, error) {
	in, err := p.sess.Device().InputState(p.controllers)
	if err != nil {
		return hmd.InputState{}, fmt.Errorf("read controllers: %w", err)
	}
	return in, nil
}

func (p *predictor) Recenter() error {
	return p.sess.Recenter()
}

package geom

import "fmt"

// FaceMesh landmark indices read by the game.
const (
	NoseTip  = 1
	HeadTop  = 10
	UpperLip = 13
	LowerLip = 14
	Chin     = 152
)

// MinLandmarks is the shortest landmark set that contains every index above.
const MinLandmarks = Chin + 1

// MouthOpenThreshold is the lip gap, as a fraction of face height, above which the
// mouth counts as open.
const MouthOpenThreshold = 0.05

// Landmarks is one detected face: normalized points in detector index order. A nil
// set means no face was found.
type Landmarks []Point

// Valid reports whether l is long enough to hold every index the game reads.
func (l Landmarks) Valid() bool {
	return len(l) >= MinLandmarks
}

// Check returns an error describing why l cannot be used, or nil.
func (l Landmarks) Check() error {
	if !l.Valid() {
		return fmt.Errorf("%d landmarks, need at least %d", len(l), MinLandmarks)
	}
	return nil
}

// Nose returns the nose tip.
func (l Landmarks) Nose() Point {
	return l[NoseTip]
}

// MouthCenter returns the midpoint between the inner upper and lower lip.
func (l Landmarks) MouthCenter() Point {
	return Midpoint(l[UpperLip], l[LowerLip])
}

// FaceHeight is the head-top to chin distance.
func (l Landmarks) FaceHeight() float64 {
	return Distance(l[HeadTop], l[Chin])
}

// MouthRatio is the lip gap divided by the face height. It is 0 when the face height
// is 0.
func (l Landmarks) MouthRatio() float64 {
	height := l.FaceHeight()
	if height == 0 {
		return 0
	}
	return Distance(l[UpperLip], l[LowerLip]) / height
}

// IsMouthOpen reports whether MouthRatio exceeds MouthOpenThreshold.
func (l Landmarks) IsMouthOpen() bool {
	return l.IsMouthOpenAt(MouthOpenThreshold)
}

// IsMouthOpenAt reports whether MouthRatio exceeds threshold.
func (l Landmarks) IsMouthOpenAt(threshold float64) bool {
	return l.MouthRatio() > threshold
}

// Scale returns a copy of l with every coordinate multiplied by k.
func (l Landmarks) Scale(k float64) Landmarks {
	if l == nil {
		return nil
	}
	out := make(Landmarks, len(l))
	for i, p := range l {
		out[i] = p.Mul(k)
	}
	return out
}

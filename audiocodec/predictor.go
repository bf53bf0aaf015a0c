package audiocodec

// Channel prediction policy.
//
// The left (or mono) channel predicts each sample from that channel's
// previous reconstructed sample; the first frame predicts from 0.
//
// The stereo right channel is predicted from the CURRENT frame's
// reconstructed left sample, not from the previous right sample. This
// cross-channel rule is part of the GACL stream format: both sides must
// apply it identically, and changing it breaks compatibility with
// existing streams.

// PolicyCrossChannel names the stereo prediction rule described above
const PolicyCrossChannel = "cross-channel-right"

// Predictor holds the causal state for one stream's channel prediction
type Predictor struct {
	prevLeft int
}

// PredictLeft returns the prediction for the next left/mono sample
func (p *Predictor) PredictLeft() int {
	return p.prevLeft
}

// PredictRight returns the prediction for the right sample of the frame
// whose reconstructed left sample is left
func (p *Predictor) PredictRight(left int) int {
	return left
}

// Advance records the reconstructed left/mono sample of the current frame
func (p *Predictor) Advance(left int) {
	p.prevLeft = left
}

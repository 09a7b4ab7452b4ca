package protocol

// Limits are the fixed size bounds recognized by both ends. They are
// supplied at construction and never renegotiated with the server.
type Limits struct {
	// NicknameMax is the maximum nickname length in bytes.
	// Default: 32.
	NicknameMax int

	// TextMax is the maximum message text length in bytes.
	// Default: 4096.
	TextMax int

	// AttachmentMax is the raw attachment size ceiling in bytes, checked
	// before the file is read and encoded.
	// Default: 8MB.
	AttachmentMax int64

	// AttachmentOverheadDivisor accounts for the growth of the
	// binary-to-text encoding when comparing a raw file size against the
	// frame budget. base64 emits 4 output bytes per 3 input bytes, so the
	// effective ceiling is AttachmentMax * 3 / 4 of the frame budget. The
	// divisor is configuration, not derivation: it depends on the chosen
	// encoding and must match the deployment.
	// Default: 4/3 expressed as numerator 4, denominator 3.
	OverheadNum, OverheadDen int64

	// HistoryWindow is the number of most recent id-bearing messages that
	// keep their edit/delete affordance. Older entries keep their content
	// but permanently lose interactivity.
	// Default: 128.
	HistoryWindow int

	// MaxFrameSize is the maximum accepted wire frame size in bytes.
	// Default: 16MB (must fit an encoded attachment).
	MaxFrameSize int64
}

// DefaultLimits returns Limits with the default bounds.
func DefaultLimits() Limits {
	return Limits{
		NicknameMax:   32,
		TextMax:       4096,
		AttachmentMax: 8 << 20,
		OverheadNum:   4,
		OverheadDen:   3,
		HistoryWindow: 128,
		MaxFrameSize:  16 << 20,
	}
}

// EncodedAttachmentCeiling returns the maximum raw file size that still
// fits the attachment ceiling once encoding overhead is applied.
func (l Limits) EncodedAttachmentCeiling() int64 {
	if l.OverheadNum <= 0 || l.OverheadDen <= 0 {
		return l.AttachmentMax
	}
	return l.AttachmentMax * l.OverheadDen / l.OverheadNum
}

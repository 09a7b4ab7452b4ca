package protocol

import "testing"

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	if l.HistoryWindow != 128 {
		t.Errorf("HistoryWindow = %d, want 128", l.HistoryWindow)
	}
	if l.NicknameMax <= 0 || l.TextMax <= 0 || l.AttachmentMax <= 0 {
		t.Errorf("limits must be positive: %+v", l)
	}
}

func TestEncodedAttachmentCeiling(t *testing.T) {
	tests := []struct {
		name string
		l    Limits
		want int64
	}{
		{
			name: "base64_overhead",
			l:    Limits{AttachmentMax: 4000, OverheadNum: 4, OverheadDen: 3},
			want: 3000,
		},
		{
			name: "no_divisor_configured",
			l:    Limits{AttachmentMax: 4000},
			want: 4000,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.l.EncodedAttachmentCeiling(); got != tc.want {
				t.Errorf("EncodedAttachmentCeiling() = %d, want %d", got, tc.want)
			}
		})
	}
}

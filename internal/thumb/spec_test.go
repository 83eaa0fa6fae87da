package thumb

import "testing"

func TestSpecFit(t *testing.T) {
	tests := []struct {
		name         string
		spec         Spec
		srcW, srcH   int
		wantW, wantH int
	}{
		{"landscape bound by width", ImageSpec, 400, 200, 150, 75},
		{"portrait bound by height", ImageSpec, 200, 400, 75, 150},
		{"square", ImageSpec, 600, 600, 150, 150},
		{"already fits", ImageSpec, 100, 80, 100, 80},
		{"video box", VideoSpec, 1920, 1080, 200, 113},
		{"degenerate", ImageSpec, 0, 100, 0, 0},
		{"extreme ratio keeps min one pixel", ImageSpec, 10000, 10, 150, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.spec.Fit(tt.srcW, tt.srcH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Fit(%d, %d) = %dx%d, want %dx%d", tt.srcW, tt.srcH, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSpecFitNeverExceedsBox(t *testing.T) {
	for srcW := 1; srcW < 2000; srcW += 97 {
		for srcH := 1; srcH < 2000; srcH += 89 {
			w, h := VideoSpec.Fit(srcW, srcH)
			if w > VideoSpec.MaxWidth || h > VideoSpec.MaxHeight {
				t.Fatalf("Fit(%d, %d) = %dx%d exceeds %dx%d box", srcW, srcH, w, h, VideoSpec.MaxWidth, VideoSpec.MaxHeight)
			}
		}
	}
}

package effects

import "math"

// Interpolate maps x from [in0, in1] to [out0, out1], clamping to the
// output range outside the input range.
func Interpolate(x, in0, in1, out0, out1 float64) float64 {
	if in1 == in0 {
		if x < in0 {
			return out0
		}
		return out1
	}
	t := clamp01((x - in0) / (in1 - in0))
	return lerp(out0, out1, t)
}

// InterpolateEased is Interpolate with an easing curve applied to the
// normalized progress.
func InterpolateEased(x, in0, in1, out0, out1 float64, ease func(float64) float64) float64 {
	if in1 == in0 {
		return Interpolate(x, in0, in1, out0, out1)
	}
	t := clamp01((x - in0) / (in1 - in0))
	return lerp(out0, out1, ease(t))
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// easeOutCubic decelerates towards the end.
func easeOutCubic(t float64) float64 {
	return 1 - pow(1-t, 3)
}

// easeOutBack overshoots the target slightly and settles back.
func easeOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*pow(t-1, 3) + c1*pow(t-1, 2)
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

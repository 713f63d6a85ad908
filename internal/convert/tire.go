package convert

import (
	"regexp"
	"strconv"

	"github.com/thesavant42/rvspecs/internal/models"
)

var tireCodePattern = regexp.MustCompile(`(PT|LT|ST|T|)(\d{3})/(\d{2,3})/?\s?(B|D|R|)(\d{1,2})(?:LR)?([A-N]?)`)

var vehicleClasses = map[string]string{
	"P":  "Passenger Car",
	"PT": "Passenger Car",
	"LT": "Light Truck",
	"ST": "Special Trailer",
	"T":  "Temporary",
}

var constructions = map[string]string{
	"B": "Bias belt",
	"D": "Diagonal",
	"R": "Radial",
	"":  "Cross-ply",
}

// load range letter -> ply rating (I and K are not issued)
var plyRatings = map[string]int{
	"A": 2, "B": 4, "C": 6, "D": 8, "E": 10, "F": 12,
	"G": 14, "H": 16, "J": 18, "L": 20, "M": 22, "N": 24,
}

// ParseTireCode decodes a tire size such as "ST205/75R14D".
// An unrecognised code yields a TireSpec whose fields are all nil.
func ParseTireCode(code string) models.TireSpec {
	spec := models.TireSpec{TireCode: code}

	m := tireCodePattern.FindStringSubmatch(code)
	if m == nil {
		return spec
	}

	widthMM, _ := strconv.ParseFloat(m[2], 64)
	aspectPct, _ := strconv.ParseFloat(m[3], 64)
	wheel, _ := strconv.ParseFloat(m[5], 64)

	widthIn := round1(widthMM / 25.4)
	aspect := aspectPct / 100
	diameter := round1(wheel + 2*(widthIn*aspect))

	if class, ok := vehicleClasses[m[1]]; ok {
		spec.VehicleClass = &class
	}
	construction := constructions[m[4]]
	spec.Construction = &construction

	spec.SectionWidthMM = &widthMM
	spec.SectionWidthIn = &widthIn
	spec.AspectRatio = &aspect
	spec.WheelDiameterIn = &wheel
	spec.TireDiameterIn = &diameter

	if m[6] != "" {
		loadRange := m[6]
		spec.LoadRange = &loadRange
		if ply, ok := plyRatings[loadRange]; ok {
			spec.PlyRating = &ply
		}
	}
	return spec
}

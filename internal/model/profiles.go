package model

// LaserProfile defines a post-processor configuration for a laser controller.
type LaserProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	StartCode []string `json:"start_code"` // Commands at start of file
	LaserOn   string   `json:"laser_on"`   // Laser on command, %d receives power (e.g., "M4 S%d")
	LaserOff  string   `json:"laser_off"`  // Laser off command

	RapidMove string `json:"rapid_move"` // G0 or equivalent
	ArcCW     string `json:"arc_cw"`     // G2 or equivalent

	EndCode []string `json:"end_code"`

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`

	DecimalPlaces int `json:"decimal_places"`
}

// Built-in laser profiles
var LaserProfiles = []LaserProfile{
	{
		Name:          "Grbl",
		Description:   "Grbl 1.1 laser mode (dynamic power)",
		StartCode:     []string{"G90", "G21", "G17", "$32=1"},
		LaserOn:       "M4 S%d",
		LaserOff:      "M5",
		RapidMove:     "G0",
		ArcCW:         "G2",
		EndCode:       []string{"M5", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC with spindle-controlled laser",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		LaserOn:       "M3 S%d",
		LaserOff:      "M5",
		RapidMove:     "G0",
		ArcCW:         "G2",
		EndCode:       []string{"M5", "G0 X0 Y0", "M2"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		StartCode:     []string{"G90", "G21"},
		LaserOn:       "M3 S%d",
		LaserOff:      "M5",
		RapidMove:     "G0",
		ArcCW:         "G2",
		EndCode:       []string{"M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetProfile returns a laser profile by name, or the Generic profile if not
// found. Validated settings always name a built-in profile.
func GetProfile(name string) LaserProfile {
	for _, p := range LaserProfiles {
		if p.Name == name {
			return p
		}
	}
	return LaserProfiles[len(LaserProfiles)-1]
}

// GetProfileNames returns the built-in profile names, the values accepted
// for laser.profile.
func GetProfileNames() []string {
	var names []string
	for _, p := range LaserProfiles {
		names = append(names, p.Name)
	}
	return names
}

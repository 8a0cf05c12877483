package registry

// Short names advertised to the LLM
const (
	LocationWKT    = "location-wkt"
	SpecialtiesAll = "specialties-all"
	SpecialistFind = "specialist-find"
)

// LocationWKTArgs is the payload of location/wkt
type LocationWKTArgs struct {
	UserLocation string `json:"user_location" jsonschema_description:"A string representation of the user's location, e.g. 'London, UK'"`
}

// SpecialtiesAllArgs is the (empty) payload of specialty/all
type SpecialtiesAllArgs struct{}

// SpecialistFindArgs is the payload of specialist/find
type SpecialistFindArgs struct {
	SpecialtyID  int    `json:"specialty_id" jsonschema_description:"ID of the specialty from the list of specialties - this should always correspond to the specialties-all function response"`
	Radius       int    `json:"radius" jsonschema_description:"Radius a user is willing to travel to see a specialist. Radius should always be in METERS."`
	UserLocation string `json:"user_location" jsonschema_description:"WKT representation of the user's location, e.g. 'POINT(21.2496774 48.7172272)'"`
}

// Functions returns the function table served by the healthcare backend
func Functions() []Function {
	return []Function{
		{
			Descriptor: Descriptor{
				Name:        LocationWKT,
				Description: "Generates WKT representation of a location from a string representation of the location",
				Parameters: ParametersFor(&LocationWKTArgs{},
					"Payload containing user location as a string representation"),
			},
			Path: "location/wkt",
		},
		{
			Descriptor: Descriptor{
				Name:        SpecialtiesAll,
				Description: "Gets list of all specialties in the database",
				Parameters:  ParametersFor(&SpecialtiesAllArgs{}, ""),
			},
			Path: "specialty/all",
		},
		{
			Descriptor: Descriptor{
				Name:        SpecialistFind,
				Description: "Gets a specialist from the database by the user defined preferences, such as specialty, location and distance from the user",
				Parameters: ParametersFor(&SpecialistFindArgs{},
					"Payload containing user preferences when searching for a specialist"),
			},
			Path: "specialist/find",
		},
	}
}

// Default builds the registry for the healthcare backend
func Default() *Registry {
	return MustNew(Functions()...)
}

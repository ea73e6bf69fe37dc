package domain

// CacheStats describes the occupancy of one of the tool's caches.
type CacheStats struct {
	Bytes   int64 `json:"bytes"`
	Entries int64 `json:"entries"`
	MaxSize int64 `json:"max_size"`
}

// Vec3 is an x, y, z triple as written by the tool.
type Vec3 [3]float64

// CameraPose is the camera used for the invocation.
type CameraPose struct {
	Distance    float64 `json:"distance"`
	FOV         float64 `json:"fov"`
	Rotation    Vec3    `json:"rotation"`
	Translation Vec3    `json:"translation"`
}

// BoundingBox of the resulting geometry.
type BoundingBox struct {
	Max  Vec3 `json:"max"`
	Min  Vec3 `json:"min"`
	Size Vec3 `json:"size"`
}

// GeometryStats describes the resulting geometry.
type GeometryStats struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Dimensions  int         `json:"dimensions"`
	Facets      int64       `json:"facets"`
	Simple      bool        `json:"simple"`
	Vertices    int64       `json:"vertices"`
}

// Timing is the time breakdown of the invocation.
type Timing struct {
	Hours        int     `json:"hours"`
	Milliseconds int     `json:"milliseconds"`
	Minutes      int     `json:"minutes"`
	Seconds      int     `json:"seconds"`
	Time         string  `json:"time"`
	Total        float64 `json:"total"`
}

// Caches groups the two caches reported by the tool.
type Caches struct {
	CGALCache     CacheStats `json:"cgal_cache"`
	GeometryCache CacheStats `json:"geometry_cache"`
}

// Summary is the document written with `--summary all --summary-file <path>`.
type Summary struct {
	Cache    Caches        `json:"cache"`
	Camera   CameraPose    `json:"camera"`
	Geometry GeometryStats `json:"geometry"`
	Time     Timing        `json:"time"`
}

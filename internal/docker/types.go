package docker

// Container is a minimal container representation used by botctl to avoid a
// direct dependency on the Docker SDK in the lifecycle controller. Fields
// cover the data the status and start checks need.
type Container struct {
	ID      string   `json:"Id"`
	Image   string   `json:"Image"`
	ImageID string   `json:"ImageID"`
	Names   []string `json:"Names"`
	Status  string   `json:"Status"`
}

// HealthNone is the health string reported for containers without a
// configured health check.
const HealthNone = "none"

package capture

// OpenRequest names the inputs one backend attempt should open together.
type OpenRequest struct {
	Video bool
	Audio bool
}

// Backend opens hardware and returns a live encoded stream.
// On failure it must not leave any device handle open, and should return a
// *DeviceError naming the input that failed so the ladder can pick the next tier.
type Backend interface {
	Open(req OpenRequest) (Stream, error)
}

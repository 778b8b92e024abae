package metadata

import "fmt"

// Handle identifies an object created by a renderer backend. The zero value
// is never a valid handle.
type Handle uint64

const InvalidHandle Handle = 0

// Result is a backend-neutral status code returned by device calls.
type Result int32

const (
	ResultSuccess Result = iota
	// The presentation surface is hidden; the frame should be skipped.
	ResultOccluded
	ResultDeviceRemoved
	ResultDeviceHung
	ResultDeviceReset
	ResultDriverInternalError
	ResultOutOfMemory
	ResultInvalidArgument
	ResultInvalidCall
	ResultUnsupported
	ResultUnknown
)

var resultNames = map[Result]string{
	ResultSuccess:             "SUCCESS",
	ResultOccluded:            "STATUS_OCCLUDED",
	ResultDeviceRemoved:       "ERROR_DEVICE_REMOVED",
	ResultDeviceHung:          "ERROR_DEVICE_HUNG",
	ResultDeviceReset:         "ERROR_DEVICE_RESET",
	ResultDriverInternalError: "ERROR_DRIVER_INTERNAL_ERROR",
	ResultOutOfMemory:         "ERROR_OUT_OF_MEMORY",
	ResultInvalidArgument:     "ERROR_INVALID_ARGUMENT",
	ResultInvalidCall:         "ERROR_INVALID_CALL",
	ResultUnsupported:         "ERROR_UNSUPPORTED",
	ResultUnknown:             "ERROR_UNKNOWN",
}

var resultDescriptions = map[Result]string{
	ResultSuccess:             "The operation completed successfully.",
	ResultOccluded:            "The window content is not visible.",
	ResultDeviceRemoved:       "The GPU device has been physically removed, the driver was upgraded or the device was lost.",
	ResultDeviceHung:          "The device failed due to a badly formed command.",
	ResultDeviceReset:         "The device failed due to a badly formed command and was reset.",
	ResultDriverInternalError: "The driver encountered a problem and was put into the device removed state.",
	ResultOutOfMemory:         "A host or device memory allocation failed.",
	ResultInvalidArgument:     "An invalid parameter was passed to the returning function.",
	ResultInvalidCall:         "The call is invalid in the current device state.",
	ResultUnsupported:         "The requested functionality is not supported by the device.",
	ResultUnknown:             "An unknown error occurred.",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("RESULT(%d)", int32(r))
}

// Description returns a human readable explanation of the status.
func (r Result) Description() string {
	if s, ok := resultDescriptions[r]; ok {
		return s
	}
	return resultDescriptions[ResultUnknown]
}

// Failed reports whether r is an error status. Occluded is a status, not an
// error.
func (r Result) Failed() bool {
	return r != ResultSuccess && r != ResultOccluded
}

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StagePixel
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

type Topology uint8

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangleList:
		return "triangle-list"
	case TopologyTriangleStrip:
		return "triangle-strip"
	case TopologyLineList:
		return "line-list"
	case TopologyLineStrip:
		return "line-strip"
	case TopologyPointList:
		return "point-list"
	}
	return fmt.Sprintf("topology(%d)", uint8(t))
}

// Format describes a vertex attribute or pixel format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatR32G32Float
	FormatR32G32B32Float
	FormatR32G32B32A32Float
	FormatR8G8B8A8Unorm
	FormatR32Uint
	FormatR32Float
)

// Size returns the size in bytes of one element of the format.
func (f Format) Size() uint32 {
	switch f {
	case FormatR32G32Float:
		return 8
	case FormatR32G32B32Float:
		return 12
	case FormatR32G32B32A32Float:
		return 16
	case FormatR8G8B8A8Unorm, FormatR32Uint, FormatR32Float:
		return 4
	}
	return 0
}

// VertexElement describes one attribute of the vertex layout. Location
// matches the @location index of the vertex program input.
type VertexElement struct {
	SemanticName string
	Location     uint32
	Format       Format
	Offset       uint32
}

type BufferKind uint8

const (
	BufferKindVertex BufferKind = iota
	BufferKindIndex
	BufferKindConstant
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindIndex:
		return "index"
	case BufferKindConstant:
		return "constant"
	}
	return fmt.Sprintf("buffer(%d)", uint8(k))
}

type BufferDesc struct {
	Kind BufferKind
	// Size of the buffer in bytes.
	Size uint32
	// Stride of one element in bytes, zero for constant buffers.
	Stride uint32
	// Dynamic buffers may be rewritten after creation.
	Dynamic bool
}

type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

type AddressMode uint8

const (
	AddressModeWrap AddressMode = iota
	AddressModeClamp
	AddressModeMirror
)

type SamplerDesc struct {
	Filter      Filter
	AddressMode AddressMode
}

// IndexSize is the size in bytes of one index. Index buffers hold uint16.
const IndexSize = 2

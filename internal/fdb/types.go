package fdb

// PageType is the heuristic classification assigned to a page exactly once.
type PageType int

const (
	PageUnknown PageType = iota
	PageHeader
	PageData
	PageIndex
	PageBlob
	PageFree
)

func (t PageType) String() string {
	switch t {
	case PageHeader:
		return "Header"
	case PageData:
		return "Data"
	case PageIndex:
		return "Index"
	case PageBlob:
		return "Blob"
	case PageFree:
		return "Free"
	default:
		return "Unknown"
	}
}

// Page is one fixed-size unit of the file. Buffer is only populated while the
// page is being actively analyzed; whoever consumes it takes ownership via
// TakeBuffer so raw bytes never accumulate across a whole scan.
type Page struct {
	Number int
	Offset int64
	Type   PageType
	Marker byte
	Buffer []byte
}

// TakeBuffer transfers ownership of the raw bytes to the caller and clears
// the page's reference.
func (p *Page) TakeBuffer() []byte {
	b := p.Buffer
	p.Buffer = nil
	return b
}

// Record is a candidate row carved out of a data page. Immutable after
// creation and never larger than the page it came from.
type Record struct {
	PageOffset   int64
	RecordOffset int
	Size         int
	Data         []byte
}

// FieldType tags the inferred content of a field. Float, DateTime and
// Boolean are reserved for explicit sample decoding; the per-byte statistics
// pass only ever assigns Integer, String and Binary.
type FieldType int

const (
	FieldUnknown FieldType = iota
	FieldInteger
	FieldFloat
	FieldString
	FieldDateTime
	FieldBinary
	FieldBoolean
)

func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "Integer"
	case FieldFloat:
		return "Float"
	case FieldString:
		return "String"
	case FieldDateTime:
		return "DateTime"
	case FieldBinary:
		return "Binary"
	case FieldBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Field is an inferred sub-range of a record layout. Size is derived: the
// distance to the next field's offset, or to the record end for the last one.
type Field struct {
	Offset int
	Size   int
	Type   FieldType
}

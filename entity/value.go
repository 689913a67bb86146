package entity

// DataValue is the value of a snak. Implementations are StringValue,
// EntityIDValue, MonolingualTextValue, TimeValue, QuantityValue and
// GlobeCoordinateValue.
type DataValue interface {
	ValueType() string
}

// StringValue is a plain string.
type StringValue struct {
	Value string
}

// ValueType implements DataValue.
func (StringValue) ValueType() string { return "string" }

// EntityIDValue references another entity.
type EntityIDValue struct {
	ID ID
}

// ValueType implements DataValue.
func (EntityIDValue) ValueType() string { return "wikibase-entityid" }

// MonolingualTextValue is a text in a single language.
type MonolingualTextValue struct {
	Text     string
	Language string
}

// ValueType implements DataValue.
func (MonolingualTextValue) ValueType() string { return "monolingualtext" }

// TimeValue is a point in time in the "+YYYY-MM-DDThh:mm:ssZ" format.
type TimeValue struct {
	Time          string
	Precision     int
	CalendarModel string
	Timezone      int
}

// ValueType implements DataValue.
func (TimeValue) ValueType() string { return "time" }

// QuantityValue is a signed decimal amount with an optional unit IRI.
type QuantityValue struct {
	Amount     string
	Unit       string
	UpperBound string
	LowerBound string
}

// ValueType implements DataValue.
func (QuantityValue) ValueType() string { return "quantity" }

// GlobeCoordinateValue is a position on a globe.
type GlobeCoordinateValue struct {
	Latitude  float64
	Longitude float64
	Precision float64
	Globe     string
}

// ValueType implements DataValue.
func (GlobeCoordinateValue) ValueType() string { return "globecoordinate" }

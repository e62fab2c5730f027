package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/remote-object/errors"
)

// maxNestedLevels bounds how deep a decoded message may nest.
// Every Value level costs two CBOR levels.
const maxNestedLevels = 64

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{MaxNestedLevels: maxNestedLevels}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// valueFrame is the on-wire shape of a Value: [tag, payload].
type valueFrame struct {
	_       struct{} `cbor:",toarray"`
	Tag     Tag
	Payload cbor.RawMessage
}

// MarshalCBOR implements cbor.Marshaler.
func (v Value) MarshalCBOR() ([]byte, error) {
	var payload any
	switch v.tag {
	case TagNumber:
		payload = v.num
	case TagBoolean:
		payload = v.boolean
	case TagString:
		units := v.str
		if units == nil {
			units = []uint16{}
		}
		payload = units
	case TagSingleton:
		payload = v.singleton
	case TagArray:
		elems := v.arr
		if elems == nil {
			elems = []Value{}
		}
		payload = elems
	default:
		return nil, errors.InvalidTag(errors.PhaseEncode, nil, uint64(v.tag))
	}

	raw, err := encMode.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode "+v.tag.String())
	}
	return encMode.Marshal(valueFrame{Tag: v.tag, Payload: raw})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (v *Value) UnmarshalCBOR(data []byte) error {
	var frame valueFrame
	if err := decMode.Unmarshal(data, &frame); err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "decode value frame")
	}

	var err error
	switch frame.Tag {
	case TagNumber:
		var n float64
		err = decMode.Unmarshal(frame.Payload, &n)
		*v = Number(n)
	case TagBoolean:
		var b bool
		err = decMode.Unmarshal(frame.Payload, &b)
		*v = Boolean(b)
	case TagString:
		var units []uint16
		err = decMode.Unmarshal(frame.Payload, &units)
		*v = StringUnits(units)
	case TagSingleton:
		var s Singleton
		err = decMode.Unmarshal(frame.Payload, &s)
		if err == nil && s != Undefined {
			return errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("unknown singleton %d", s))
		}
		*v = UndefinedValue()
	case TagArray:
		var elems []Value
		err = decMode.Unmarshal(frame.Payload, &elems)
		*v = Array(elems...)
	default:
		return errors.InvalidTag(errors.PhaseDecode, nil, uint64(frame.Tag))
	}
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "decode "+frame.Tag.String())
	}
	return nil
}

// MarshalRequest serializes a Request to CBOR bytes.
func MarshalRequest(r *Request) ([]byte, error) {
	return encMode.Marshal(r)
}

// UnmarshalRequest deserializes a Request from CBOR bytes.
func UnmarshalRequest(data []byte) (*Request, error) {
	var r Request
	if err := decMode.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "unmarshal request")
	}
	return &r, nil
}

// MarshalResponse serializes a Response to CBOR bytes.
func MarshalResponse(r *Response) ([]byte, error) {
	if !r.Result.Code.Valid() {
		return nil, errors.InvalidData(errors.PhaseEncode, []string{"result"}, "error code outside closed set: "+r.Result.Code.String())
	}
	return encMode.Marshal(r)
}

// UnmarshalResponse deserializes a Response from CBOR bytes.
func UnmarshalResponse(data []byte) (*Response, error) {
	var r Response
	if err := decMode.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "unmarshal response")
	}
	if !r.Result.Code.Valid() {
		return nil, errors.InvalidData(errors.PhaseDecode, []string{"result"}, "error code outside closed set: "+r.Result.Code.String())
	}
	return &r, nil
}

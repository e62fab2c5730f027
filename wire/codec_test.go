package wire

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/wippyai/remote-object/errors"
)

func TestRequestRoundTrip(t *testing.T) {
	req := &Request{
		Seq:    7,
		Object: 3,
		Op:     OpInvoke,
		Method: "greet",
		Args: []Value{
			Number(math.NaN()),
			Number(math.Copysign(0, -1)),
			Number(math.Inf(1)),
			Boolean(true),
			StringUnits([]uint16{'h', 0xD800, 'i'}),
			UndefinedValue(),
			Array(Number(1), Array(String("nested"))),
			Array(),
		},
	}

	data, err := MarshalRequest(req)
	if err != nil {
		t.Fatalf("MarshalRequest: %v", err)
	}
	got, err := UnmarshalRequest(data)
	if err != nil {
		t.Fatalf("UnmarshalRequest: %v", err)
	}

	if got.Seq != req.Seq || got.Object != req.Object || got.Op != req.Op || got.Method != req.Method {
		t.Fatalf("header mismatch: got %+v", got)
	}
	if len(got.Args) != len(req.Args) {
		t.Fatalf("got %d args, want %d", len(got.Args), len(req.Args))
	}
	for i := range req.Args {
		if !got.Args[i].Equal(req.Args[i]) {
			t.Errorf("arg %d: got %v, want %v", i, got.Args[i], req.Args[i])
		}
	}
	if !math.Signbit(got.Args[1].Number()) {
		t.Error("negative zero lost its sign")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{"success", Response{Seq: 1, Result: Success(String("hello"))}},
		{"undefined", Response{Seq: 2, Result: Success(UndefinedValue())}},
		{"no value", Response{Seq: 3, Result: Result{Code: OK}}},
		{"blocked", Response{Seq: 4, Result: Failure(ObjectGetClassBlocked)}},
		{"methods", Response{Seq: 5, Methods: []string{"greet", "ids"}}},
		{"found", Response{Seq: 6, Found: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalResponse(&tt.resp)
			if err != nil {
				t.Fatalf("MarshalResponse: %v", err)
			}
			got, err := UnmarshalResponse(data)
			if err != nil {
				t.Fatalf("UnmarshalResponse: %v", err)
			}
			if got.Seq != tt.resp.Seq || got.Found != tt.resp.Found || got.Result.Code != tt.resp.Result.Code {
				t.Fatalf("got %+v, want %+v", got, tt.resp)
			}
			if (got.Result.Value == nil) != (tt.resp.Result.Value == nil) {
				t.Fatalf("value presence: got %v, want %v", got.Result.Value, tt.resp.Result.Value)
			}
			if got.Result.Value != nil && !got.Result.Value.Equal(*tt.resp.Result.Value) {
				t.Errorf("value: got %v, want %v", got.Result.Value, tt.resp.Result.Value)
			}
			if len(got.Methods) != len(tt.resp.Methods) {
				t.Errorf("methods: got %v, want %v", got.Methods, tt.resp.Methods)
			}
		})
	}
}

func TestUnmarshalRejectsUnknownTag(t *testing.T) {
	payload, err := encMode.Marshal(1.5)
	if err != nil {
		t.Fatal(err)
	}
	data, err := encMode.Marshal(valueFrame{Tag: 9, Payload: payload})
	if err != nil {
		t.Fatal(err)
	}

	var v Value
	err = v.UnmarshalCBOR(data)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidTag}) {
		t.Fatalf("expected invalid tag error, got %v", err)
	}
}

func TestMarshalResponseRejectsUnknownCode(t *testing.T) {
	_, err := MarshalResponse(&Response{Result: Result{Code: 42}})
	if err == nil {
		t.Fatal("expected error for code outside closed set")
	}
}

func TestUnmarshalRejectsDeepNesting(t *testing.T) {
	v := Number(1)
	for i := 0; i < maxNestedLevels; i++ {
		v = Array(v)
	}
	data, err := MarshalRequest(&Request{Seq: 1, Op: OpInvoke, Method: "m", Args: []Value{v}})
	if err != nil {
		t.Fatalf("MarshalRequest: %v", err)
	}
	if _, err := UnmarshalRequest(data); err == nil {
		t.Fatal("expected nesting limit error")
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(42), "42"},
		{Number(0.5), "0.5"},
		{Boolean(false), "false"},
		{String("hi"), `"hi"`},
		{UndefinedValue(), "undefined"},
		{Array(Number(1), String("a")), `[1, "a"]`},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueEqual(t *testing.T) {
	if Number(0).Equal(Number(math.Copysign(0, -1))) {
		t.Error("+0 and -0 should differ")
	}
	if !Number(math.NaN()).Equal(Number(math.NaN())) {
		t.Error("NaN should equal NaN")
	}
	if Number(1).Equal(Boolean(true)) {
		t.Error("different tags should differ")
	}
	if !String("é").Equal(StringUnits([]uint16{0xE9})) {
		t.Error("String should encode UTF-16")
	}
}

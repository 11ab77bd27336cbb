package httpapi

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/champions-academy/clubgate/internal/clubgate/types"
)

// Protobuf scan bodies are google.protobuf.Struct values carrying the same
// field names as the JSON body.

func scanRequestFromStruct(s *structpb.Struct) (types.ScanRequest, error) {
	var req types.ScanRequest
	for name, v := range s.GetFields() {
		str, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
				continue
			}
			return types.ScanRequest{}, fmt.Errorf("field %q must be a string", name)
		}
		switch name {
		case "uid":
			req.UID = str.StringValue
		case "code":
			req.Code = str.StringValue
		case "location":
			req.Location = str.StringValue
		default:
			return types.ScanRequest{}, fmt.Errorf("unknown field %q", name)
		}
	}
	return req, nil
}

func scanResponseToStruct(resp types.ScanResponse) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"success": structpb.NewBoolValue(resp.Success),
		"message": structpb.NewStringValue(resp.Message),
	}
	if m := resp.Member; m != nil {
		fields["member"] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"first_name":  structpb.NewStringValue(m.FirstName),
			"last_name":   structpb.NewStringValue(m.LastName),
			"member_code": structpb.NewStringValue(m.MemberCode),
		}})
	}
	if b := resp.Balance; b != nil {
		fields["balance"] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"amount_due": structpb.NewNumberValue(b.AmountDue),
			"note":       structpb.NewStringValue(b.Note),
		}})
	}
	return &structpb.Struct{Fields: fields}
}

package meshcop

// StateValue is the value carried by a State TLV.
type StateValue int8

// State TLV values (Thread 1.1 Section 8.10.1.16).
const (
	StateReject  StateValue = -1
	StatePending StateValue = 0
	StateAccept  StateValue = 1
)

// String returns the state value name.
func (s StateValue) String() string {
	switch s {
	case StateReject:
		return "Reject"
	case StatePending:
		return "Pending"
	case StateAccept:
		return "Accept"
	default:
		return "Unknown"
	}
}

// FinalizeMessage is the typed field set of a JOIN_FIN.req / JOIN_FIN.rsp
// message. All fields except State are optional; absent string fields are
// empty and absent byte fields are nil.
type FinalizeMessage struct {
	State              StateValue
	VendorName         string
	VendorModel        string
	VendorSWVersion    string
	VendorData         []byte
	VendorStackVersion []byte
	ProvisioningURL    string
}

// ParseFinalize decodes the MeshCoP TLV set of a joiner finalize message.
// Unknown TLV types are skipped.
func ParseFinalize(buf []byte) (*FinalizeMessage, error) {
	m := &FinalizeMessage{State: StatePending}
	r := NewReader(buf)
	for r.Next() {
		switch r.Type() {
		case TypeState:
			v, err := r.Uint8()
			if err != nil {
				return nil, err
			}
			s := StateValue(int8(v))
			if s < StateReject || s > StateAccept {
				return nil, ErrInvalidState
			}
			m.State = s
		case TypeVendorName:
			m.VendorName = string(r.Value())
		case TypeVendorModel:
			m.VendorModel = string(r.Value())
		case TypeVendorSWVersion:
			m.VendorSWVersion = string(r.Value())
		case TypeVendorData:
			m.VendorData = append([]byte(nil), r.Value()...)
		case TypeVendorStackVersion:
			m.VendorStackVersion = append([]byte(nil), r.Value()...)
		case TypeProvisioningURL:
			m.ProvisioningURL = string(r.Value())
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes the message as a MeshCoP TLV set. Optional fields that
// are empty are omitted; the State TLV is always present.
func (m *FinalizeMessage) Encode() ([]byte, error) {
	buf := AppendUint8(nil, TypeState, uint8(m.State))
	var err error
	if m.VendorName != "" {
		if buf, err = AppendString(buf, TypeVendorName, m.VendorName); err != nil {
			return nil, err
		}
	}
	if m.VendorModel != "" {
		if buf, err = AppendString(buf, TypeVendorModel, m.VendorModel); err != nil {
			return nil, err
		}
	}
	if m.VendorSWVersion != "" {
		if buf, err = AppendString(buf, TypeVendorSWVersion, m.VendorSWVersion); err != nil {
			return nil, err
		}
	}
	if len(m.VendorData) > 0 {
		if buf, err = Append(buf, TypeVendorData, m.VendorData); err != nil {
			return nil, err
		}
	}
	if len(m.VendorStackVersion) > 0 {
		if buf, err = Append(buf, TypeVendorStackVersion, m.VendorStackVersion); err != nil {
			return nil, err
		}
	}
	if m.ProvisioningURL != "" {
		if buf, err = AppendString(buf, TypeProvisioningURL, m.ProvisioningURL); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

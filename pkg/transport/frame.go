package transport

import (
	"errors"

	"github.com/threadmesh/commissioner/pkg/commissioning"
	"github.com/threadmesh/commissioner/pkg/meshcop"
)

// Frame commands.
const (
	cmdPetitionReq  = 1
	cmdPetitionRsp  = 2
	cmdKeepAliveReq = 3
	cmdKeepAliveRsp = 4
)

// Frame layout: [cmd octet][interface octet][MeshCoP TLV payload].
const frameHeaderLen = 2

var (
	// ErrShortFrame is returned for a frame without a full header.
	ErrShortFrame = errors.New("transport: short frame")

	// ErrBadFrame is returned for an unparseable frame payload.
	ErrBadFrame = errors.New("transport: malformed frame")
)

// wireState maps a commissioning state to its State TLV value.
// StateNoNetwork is a local condition and has no wire form.
func wireState(st commissioning.State) meshcop.StateValue {
	switch st {
	case commissioning.StateAccept:
		return meshcop.StateAccept
	case commissioning.StateReject:
		return meshcop.StateReject
	default:
		return meshcop.StatePending
	}
}

func stateFromWire(v meshcop.StateValue) (commissioning.State, error) {
	switch v {
	case meshcop.StateAccept:
		return commissioning.StateAccept, nil
	case meshcop.StatePending:
		return commissioning.StatePending, nil
	case meshcop.StateReject:
		return commissioning.StateReject, nil
	default:
		return 0, ErrBadFrame
	}
}

func encodePetitionReq(iface commissioning.InterfaceID, commissionerID string) ([]byte, error) {
	buf := []byte{cmdPetitionReq, byte(iface)}
	return meshcop.AppendString(buf, meshcop.TypeCommissionerID, commissionerID)
}

func encodeKeepAliveReq(iface commissioning.InterfaceID, st commissioning.State) []byte {
	buf := []byte{cmdKeepAliveReq, byte(iface)}
	return meshcop.AppendUint8(buf, meshcop.TypeState, uint8(wireState(st)))
}

func encodeResponse(cmd byte, iface commissioning.InterfaceID, st commissioning.State, sessionID uint16) []byte {
	buf := []byte{cmd, byte(iface)}
	buf = meshcop.AppendUint8(buf, meshcop.TypeState, uint8(wireState(st)))
	return meshcop.AppendUint16(buf, meshcop.TypeCommissionerSessionID, sessionID)
}

type frame struct {
	cmd     byte
	iface   commissioning.InterfaceID
	payload []byte
}

func decodeFrame(buf []byte) (frame, error) {
	if len(buf) < frameHeaderLen {
		return frame{}, ErrShortFrame
	}
	return frame{
		cmd:     buf[0],
		iface:   commissioning.InterfaceID(int8(buf[1])),
		payload: buf[frameHeaderLen:],
	}, nil
}

// responseState extracts the State TLV from a response payload.
func responseState(payload []byte) (commissioning.State, error) {
	v, err := meshcop.Find(payload, meshcop.TypeState)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, ErrBadFrame
	}
	return stateFromWire(meshcop.StateValue(int8(v[0])))
}

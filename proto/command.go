package proto

// Envelope constants.
const (
	magic0  = 'M'
	magic1  = 'W'
	Version = 1
)

// Message types.
const (
	typeSetState      = 0x01
	typeSetConfig     = 0x02
	typeSetSettings   = 0x03
	typeStorageFormat = 0x10
	typeStorageUpload = 0x11
	typeStorageExists = 0x12
	typeStorageDelete = 0x13
)

// MaxBrightness is the upper end of the brightness scale.
const MaxBrightness = 100

// Command is the closed set of protocol commands. A decoded Command is
// already validated; dispatchers match exhaustively on the concrete type.
type Command interface {
	isCommand()
}

// SetState switches the panel wall on or off.
type SetState struct {
	On bool
}

// SetConfig installs a new display configuration.
type SetConfig struct {
	Config Configuration
}

// SetSettings adjusts the output brightness (0–100).
type SetSettings struct {
	Brightness uint8
}

// StorageFormat erases the whole sprite store.
type StorageFormat struct{}

// StorageUpload stores an encoded sprite asset under Key. The payload is the
// Sprite wire format; it is schema-checked before the command is accepted.
type StorageUpload struct {
	Key     string
	Payload []byte
}

// StorageExists queries whether a sprite is present.
type StorageExists struct {
	Key string
}

// StorageDelete removes a sprite.
type StorageDelete struct {
	Key string
}

func (SetState) isCommand()      {}
func (SetConfig) isCommand()     {}
func (SetSettings) isCommand()   {}
func (StorageFormat) isCommand() {}
func (StorageUpload) isCommand() {}
func (StorageExists) isCommand() {}
func (StorageDelete) isCommand() {}

// DecodeCommand parses and validates one command message. It returns either a
// fully valid Command or an error and no effect; there is no partial decode.
func DecodeCommand(buf []byte) (Command, error) {
	r := &reader{buf: buf}

	m0, err := r.u8()
	if err != nil {
		return nil, err
	}
	m1, err := r.u8()
	if err != nil {
		return nil, err
	}
	if m0 != magic0 || m1 != magic1 {
		return nil, decodeErrf(0, "bad magic %#02x%02x", m0, m1)
	}

	version, err := r.u8()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, schemaErrf("version", "unsupported version %d, this device speaks %d", version, Version)
	}

	msgType, err := r.u8()
	if err != nil {
		return nil, err
	}

	var cmd Command
	switch msgType {
	case typeSetState:
		on, err := r.bool()
		if err != nil {
			return nil, err
		}
		cmd = SetState{On: on}

	case typeSetConfig:
		config, err := decodeConfiguration(r)
		if err != nil {
			return nil, err
		}
		if err = config.Validate(); err != nil {
			return nil, err
		}
		cmd = SetConfig{Config: *config}

	case typeSetSettings:
		brightness, err := r.u8()
		if err != nil {
			return nil, err
		}
		if brightness > MaxBrightness {
			return nil, schemaErrf("brightness", "%d out of range 0..%d", brightness, MaxBrightness)
		}
		cmd = SetSettings{Brightness: brightness}

	case typeStorageFormat:
		cmd = StorageFormat{}

	case typeStorageUpload:
		key, err := r.str()
		if err != nil {
			return nil, err
		}
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		payload, err := r.bytes(int(n))
		if err != nil {
			return nil, err
		}
		// The payload must itself be a valid sprite asset; reject the whole
		// command otherwise so nothing unreadable lands in flash.
		if _, err = DecodeSprite(payload); err != nil {
			return nil, err
		}
		cmd = StorageUpload{Key: key, Payload: payload}

	case typeStorageExists:
		key, err := r.str()
		if err != nil {
			return nil, err
		}
		cmd = StorageExists{Key: key}

	case typeStorageDelete:
		key, err := r.str()
		if err != nil {
			return nil, err
		}
		cmd = StorageDelete{Key: key}

	default:
		return nil, schemaErrf("type", "unknown message type %#02x", msgType)
	}

	if err := r.done(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// EncodeCommand serializes a command into the wire envelope. It is the exact
// inverse of DecodeCommand and is used by the host-side composer and tests.
func EncodeCommand(cmd Command) []byte {
	w := &writer{}
	w.u8(magic0)
	w.u8(magic1)
	w.u8(Version)

	switch c := cmd.(type) {
	case SetState:
		w.u8(typeSetState)
		w.bool(c.On)
	case SetConfig:
		w.u8(typeSetConfig)
		encodeConfiguration(w, &c.Config)
	case SetSettings:
		w.u8(typeSetSettings)
		w.u8(c.Brightness)
	case StorageFormat:
		w.u8(typeStorageFormat)
	case StorageUpload:
		w.u8(typeStorageUpload)
		w.str(c.Key)
		w.u32(uint32(len(c.Payload)))
		w.bytes(c.Payload)
	case StorageExists:
		w.u8(typeStorageExists)
		w.str(c.Key)
	case StorageDelete:
		w.u8(typeStorageDelete)
		w.str(c.Key)
	}
	return w.buf
}

package sigreq

// TransactionHeader carries TAPoS and resource-limit fields. All-zero
// (expiration=0, ref_block_num=0, ref_block_prefix=0) is the "null
// header" that signals resolution must fill it in (spec §3).
type TransactionHeader struct {
	Expiration       uint32 // seconds since epoch
	RefBlockNum      uint16
	RefBlockPrefix   uint32
	MaxNetUsageWords uint64
	MaxCpuUsageMs    uint8
	DelaySec         uint64
}

// IsNull reports whether this is the null header.
func (h TransactionHeader) IsNull() bool {
	return h.Expiration == 0 && h.RefBlockNum == 0 && h.RefBlockPrefix == 0
}

func (h TransactionHeader) encode(e *encoder) {
	e.WriteUint32(h.Expiration)
	e.WriteUint16(h.RefBlockNum)
	e.WriteUint32(h.RefBlockPrefix)
	e.WriteVarUint(h.MaxNetUsageWords)
	e.WriteU8(h.MaxCpuUsageMs)
	e.WriteVarUint(h.DelaySec)
}

func decodeTransactionHeader(d *decoder) (TransactionHeader, error) {
	var h TransactionHeader
	var err error
	if h.Expiration, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.RefBlockNum, err = d.ReadUint16(); err != nil {
		return h, err
	}
	if h.RefBlockPrefix, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.MaxNetUsageWords, err = d.ReadVarUint(); err != nil {
		return h, err
	}
	if h.MaxCpuUsageMs, err = d.ReadByte(); err != nil {
		return h, err
	}
	if h.DelaySec, err = d.ReadVarUint(); err != nil {
		return h, err
	}
	return h, nil
}

// Extension is an opaque, typed transaction extension (spec §3).
type Extension struct {
	Type uint16
	Data []byte
}

func (x Extension) encode(e *encoder) {
	e.WriteUint16(x.Type)
	e.WriteVarBytes(x.Data)
}

func decodeExtension(d *decoder) (Extension, error) {
	var x Extension
	var err error
	if x.Type, err = d.ReadUint16(); err != nil {
		return x, err
	}
	if x.Data, err = d.ReadVarBytes(); err != nil {
		return x, err
	}
	return x, nil
}

// Transaction is the header plus the three action vectors (spec §3).
type Transaction struct {
	TransactionHeader
	ContextFreeActions   []Action
	Actions              []Action
	TransactionExtensions []Extension
}

// Clone returns a deep copy.
func (t Transaction) Clone() Transaction {
	out := t
	out.ContextFreeActions = cloneActions(t.ContextFreeActions)
	out.Actions = cloneActions(t.Actions)
	out.TransactionExtensions = append([]Extension(nil), t.TransactionExtensions...)
	return out
}

func cloneActions(as []Action) []Action {
	out := make([]Action, len(as))
	for i, a := range as {
		out[i] = a.Clone()
	}
	return out
}

func (t Transaction) encode(e *encoder) {
	t.TransactionHeader.encode(e)
	e.WriteVarUint(uint64(len(t.ContextFreeActions)))
	for _, a := range t.ContextFreeActions {
		a.encode(e)
	}
	e.WriteVarUint(uint64(len(t.Actions)))
	for _, a := range t.Actions {
		a.encode(e)
	}
	e.WriteVarUint(uint64(len(t.TransactionExtensions)))
	for _, x := range t.TransactionExtensions {
		x.encode(e)
	}
}

func decodeTransaction(d *decoder) (Transaction, error) {
	var t Transaction
	var err error
	if t.TransactionHeader, err = decodeTransactionHeader(d); err != nil {
		return t, err
	}
	if t.ContextFreeActions, err = decodeActionSlice(d); err != nil {
		return t, err
	}
	if t.Actions, err = decodeActionSlice(d); err != nil {
		return t, err
	}
	n, err := d.ReadVarUint()
	if err != nil {
		return t, err
	}
	t.TransactionExtensions = make([]Extension, n)
	for i := range t.TransactionExtensions {
		if t.TransactionExtensions[i], err = decodeExtension(d); err != nil {
			return t, err
		}
	}
	return t, nil
}

func decodeActionSlice(d *decoder) ([]Action, error) {
	n, err := d.ReadVarUint()
	if err != nil {
		return nil, err
	}
	out := make([]Action, n)
	for i := range out {
		if out[i], err = decodeAction(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NullHeaderTransaction builds a transaction with the null header and
// empty action-free vectors, as used for the action/action[] request
// variants before resolution (spec §4.5 step 1).
func NullHeaderTransaction(actions []Action) Transaction {
	return Transaction{Actions: actions}
}

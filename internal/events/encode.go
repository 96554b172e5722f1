package events

import "isafeDashboard/internal/bcs"

func (e AccountCreated) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		Address(e.Creator).
		AddressVector(e.Members).
		U64Vector(e.Weights).
		U64(e.Threshold).
		OptionAddress(e.Guardian).
		Bytes()
}

func (e AccountRotated) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		Address(e.Package).
		Str(e.ModuleName).
		Str(e.FunctionName).
		Bytes()
}

func (e MemberAdded) Encode() []byte {
	return bcs.NewWriter().Address(e.Account).Address(e.Member).U64(e.Weight).Bytes()
}

func (e MemberRemoved) Encode() []byte {
	return bcs.NewWriter().Address(e.Account).Address(e.Member).Bytes()
}

func (e MemberWeightUpdated) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		Address(e.Member).
		U64(e.OldWeight).
		U64(e.NewWeight).
		Bytes()
}

func (e ThresholdChanged) Encode() []byte {
	return bcs.NewWriter().Address(e.Account).U64(e.OldThreshold).U64(e.NewThreshold).Bytes()
}

func (e GuardianChanged) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		OptionAddress(e.OldGuardian).
		OptionAddress(e.NewGuardian).
		Bytes()
}

func (e TransactionProposed) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		ByteVector(e.TransactionDigest).
		Address(e.Proposer).
		Bytes()
}

func (e TransactionApproved) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		ByteVector(e.TransactionDigest).
		Address(e.Approver).
		U64(e.ApproverWeight).
		U64(e.TotalApprovedWeight).
		Bytes()
}

func (e TransactionApprovalThresholdReached) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		ByteVector(e.TransactionDigest).
		U64(e.TotalApprovedWeight).
		U64(e.Threshold).
		Bytes()
}

func (e TransactionApprovalThresholdLost) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		ByteVector(e.TransactionDigest).
		U64(e.TotalApprovedWeight).
		U64(e.Threshold).
		Bytes()
}

func (e TransactionExecuted) Encode() []byte {
	return bcs.NewWriter().
		Address(e.Account).
		ByteVector(e.TransactionDigest).
		Address(e.Executor).
		Bytes()
}

func (e TransactionRemoved) Encode() []byte {
	return bcs.NewWriter().Address(e.Account).ByteVector(e.TransactionDigest).Bytes()
}

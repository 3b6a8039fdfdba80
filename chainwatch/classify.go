package chainwatch

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Names of the encumbered transactions a node publishes after closing a
// channel unilaterally.
const (
	NameCommitment  = "our_ctx"
	NameToLocal     = "our_ctx_to_local"
	NameHTLCTx      = "our_ctx_htlc_tx"
	NameSecondStage = "second_stage"
)

// Witness stack sizes of the scripts defined in BOLT 3.
const (
	// <local_delayedsig> <> <to_local script>
	delayedWitnessItems = 3
	// 0 <remotehtlcsig> <localhtlcsig> <payment_preimage or empty> <htlc script>
	htlcTxWitnessItems = 5
)

// classifyCommitmentSpend names a transaction spending output input of our
// commitment transaction. Spends only the remote can make (to_remote,
// anchors, htlc claims, revocations) are not ours and report false.
func classifyCommitmentSpend(spender *wire.MsgTx, input int) (string, bool) {
	in := spender.TxIn[input]
	switch {
	case isHTLCTxSpend(in):
		return NameHTLCTx, true
	case isDelayedSpend(in):
		return NameToLocal, true
	}
	return "", false
}

// isHTLCTxSpend matches the 2-of-2 witness of an htlc-success or
// htlc-timeout transaction. The remote side can not produce it on its own.
func isHTLCTxSpend(in *wire.TxIn) bool {
	return len(in.Witness) == htlcTxWitnessItems && len(in.Witness[0]) == 0
}

// isDelayedSpend matches the delayed branch of a to_local script, used for
// our to_local output and the outputs of our htlc transactions.
func isDelayedSpend(in *wire.TxIn) bool {
	w := in.Witness
	return len(w) == delayedWitnessItems &&
		len(w[1]) == 0 &&
		isToLocalScript(w[2]) &&
		hasRelativeLock(in.Sequence)
}

// isToLocalScript matches
// OP_IF <revocationpubkey> OP_ELSE <delay> OP_CSV OP_DROP <delayedpubkey> OP_ENDIF OP_CHECKSIG.
func isToLocalScript(script []byte) bool {
	var ops []byte
	tok := txscript.MakeScriptTokenizer(0, script)
	for tok.Next() {
		ops = append(ops, tok.Opcode())
	}
	if tok.Err() != nil || len(ops) != 9 {
		return false
	}
	return ops[0] == txscript.OP_IF &&
		ops[1] == txscript.OP_DATA_33 &&
		ops[2] == txscript.OP_ELSE &&
		ops[4] == txscript.OP_CHECKSEQUENCEVERIFY &&
		ops[5] == txscript.OP_DROP &&
		ops[6] == txscript.OP_DATA_33 &&
		ops[7] == txscript.OP_ENDIF &&
		ops[8] == txscript.OP_CHECKSIG
}

// hasRelativeLock reports whether sequence encodes a BIP 68 block based
// relative lock time.
func hasRelativeLock(sequence uint32) bool {
	if sequence&wire.SequenceLockTimeDisabled != 0 {
		return false
	}
	if sequence&wire.SequenceLockTimeIsSeconds != 0 {
		return false
	}
	return sequence&wire.SequenceLockTimeMask > 0
}

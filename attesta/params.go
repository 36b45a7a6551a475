// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package attesta

import "math/big"

// Constants of the settlement ledger.
const (
	// MinUnstakeDelay lower bound of the configurable unstake delay (unit: second).
	MinUnstakeDelay uint64 = 60 * 60

	// MinTaskTimeoutFloor lower bound of the configurable minimum task timeout (unit: second).
	MinTaskTimeoutFloor uint64 = 60
)

// Keys of governance params.
var (
	KeyStakeAmount        = Blake2b([]byte("stake-amount"))
	KeyUnstakeDelay       = Blake2b([]byte("unstake-delay"))
	KeyMinTaskTimeout     = Blake2b([]byte("min-task-timeout"))
	KeyMaxRewardAmount    = Blake2b([]byte("max-reward-amount"))
	KeyRewardToken        = Blake2b([]byte("reward-token"))
	KeyRewardTokenEnabled = Blake2b([]byte("reward-token-enabled"))
	KeyPaused             = Blake2b([]byte("paused"))

	// InitialStakeAmount default minimum node collateral.
	InitialStakeAmount = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))
	// InitialUnstakeDelay default delay between unstake request and withdrawal (unit: second).
	InitialUnstakeDelay = big.NewInt(60 * 60 * 24 * 7)
	// InitialMinTaskTimeout default minimum task timeout (unit: second).
	InitialMinTaskTimeout = big.NewInt(60 * 10)
	// InitialMaxRewardAmount default per-task reward cap.
	InitialMaxRewardAmount = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
)

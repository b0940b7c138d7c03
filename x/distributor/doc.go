/*
Package distributor implements a fund distribution contract.

Funds of a single ticker are split between a burn address, an optional
developer address and a whitelist of protocols. The burn, distribute and
developer shares are independent fractions of the distributed amount. Each
whitelisted protocol receives its weight of the distribute share. Rounding
always truncates. Any remainder stays on the contract account and can be
burned later using the burn the bottom operation.

Funds are taken from one of two sources, depending on the configuration:

  ledger   - depositors lock funds by depositing them. Only the owner of a
             ledger entry can distribute or withdraw it.
  contract - the whole contract account balance is distributed. Anyone can
             request the distribution. Deposits are disabled.

The configuration can be updated by the admin only. Setting the admin to an
empty address freezes the configuration forever.
*/
package distributor

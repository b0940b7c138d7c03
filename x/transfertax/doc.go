/*
Package transfertax implements a tax that is deducted from every transfer
leaving the distributor contract account.

The tax is declared as a rate that is applied on top of the amount that the
recipient receives. For a transfer of value c the recipient gets
floor(c / (1 + rate)) and the rest is sent to the collector. A per ticker cap
limits the deducted value.

Transfertax extension is configured via `gconf`. When no configuration exists,
no tax is deducted.
*/
package transfertax

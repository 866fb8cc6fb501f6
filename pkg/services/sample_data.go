package services

import "telar-chat-api/pkg/models"

// SampleInventory は在庫のサンプルデータです。
func SampleInventory() []models.InventoryRecord {
	return []models.InventoryRecord{
		{ID: "101", Name: "Abrigo de Lana", Category: "ABRIGO", Size: "S", Gender: "Mujer", Stock: 45, Price: 189.99},
		{ID: "102", Name: "Buzo Deportivo", Category: "BUZOS", Size: "M", Gender: "Mujer", Stock: 80, Price: 55.50},
		{ID: "103", Name: "Jeans Slim Fit", Category: "JEANS TERMINADOS", Size: "L", Gender: "Hombre", Stock: 12, Price: 79.90},
		{ID: "104", Name: "Polo Clásico", Category: "POLOS", Size: "XL", Gender: "Hombre", Stock: 65, Price: 35.00},
		{ID: "105", Name: "Vestido Floral", Category: "VESTIDOS", Size: "XS", Gender: "Mujer", Stock: 30, Price: 95.99},
		{ID: "106", Name: "Bermuda de Baño", Category: "ROPA DE BAÑO", Size: "10", Gender: "Niño", Stock: 70, Price: 25.99},
		{ID: "107", Name: "Falda Plisada", Category: "FALDA", Size: "8", Gender: "Niña", Stock: 40, Price: 38.50},
		{ID: "108", Name: "Pijama Algodón", Category: "PIJAMAS", Size: "XXS", Gender: "Mujer", Stock: 25, Price: 45.00},
	}
}

// SampleSales は売上のサンプルデータです。
func SampleSales() []models.SalesRecord {
	return []models.SalesRecord{
		{Date: "2025-11-06", Amount: 4274.75, Category: "ABRIGO", Region: "Norte"},
		{Date: "2025-11-05", Amount: 1150.00, Category: "BUZOS", Region: "Sur"},
		{Date: "2025-11-06", Amount: 259.90, Category: "ROPA DE BAÑO", Region: "Este"},
		{Date: "2025-11-04", Amount: 383.50, Category: "FALDA", Region: "Oeste"},
		{Date: "2025-11-03", Amount: 1200.00, Category: "POLOS", Region: "Centro"},
	}
}
